package gtclient

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/grabtube/grabtube/common"
)

// dialFunc points to the real dialer in production; tests swap it out.
var dialFunc = defaultDial

func defaultDial(network, address string) (net.Conn, error) {
	return net.DialTimeout(network, address, common.DefaultDialTimeout)
}

// tcpPort returns the daemon's TCP fallback port from the environment,
// or the default.
func tcpPort() int {
	if port := os.Getenv(common.TCPPortEnv); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p >= 1 && p <= 65535 {
			return p
		}
		debugLog("invalid TCP port %q, using default %d", port, common.DefaultTCPPort)
	}
	return common.DefaultTCPPort
}

func forceTCP() bool {
	return os.Getenv(common.ForceTCPEnv) == "1"
}

func debugMode() bool {
	return os.Getenv(common.DebugEnv) == "1"
}

func tcpAddress() string {
	return fmt.Sprintf("%s:%d", common.TCPHost, tcpPort())
}

func debugLog(format string, args ...any) {
	if debugMode() {
		log.Printf(format, args...)
	}
}
