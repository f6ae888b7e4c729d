package gtclient

import (
	"fmt"
	"time"
)

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
	socketDialTimeout  = 100 * time.Millisecond
)

// ensureDaemon checks if the daemon is running and spawns it if not.
func ensureDaemon() error {
	if isDaemonRunning() {
		return nil
	}
	if err := spawnDaemon(); err != nil {
		return err
	}
	return waitForDaemon(daemonStartTimeout)
}

// waitForDaemon polls until the daemon accepts connections or the
// timeout expires.
func waitForDaemon(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning() {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}
