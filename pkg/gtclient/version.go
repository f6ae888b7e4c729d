package gtclient

import (
	"fmt"
	"os"
)

// VersionCheckEnv suppresses version mismatch warnings when set to any
// non-empty value. Useful for scripts and CI.
const VersionCheckEnv = "GRABTUBE_SUPPRESS_VERSION_CHECK"

// CheckVersionMismatch warns on stderr when the daemon's version differs
// from the CLI's. It never blocks execution.
func (c *Client) CheckVersionMismatch(expectedVersion string) {
	if expectedVersion == "" {
		return
	}
	if os.Getenv(VersionCheckEnv) != "" {
		return
	}

	daemonVersion, err := c.GetDaemonVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not verify daemon version: %v\n", err)
		return
	}

	if daemonVersion.Version != expectedVersion {
		fmt.Fprintf(os.Stderr, "Warning: CLI version (%s) differs from daemon version (%s)\n",
			expectedVersion, daemonVersion.Version)
		fmt.Fprintf(os.Stderr, "Restart the daemon to pick up the new version.\n")
	}
}
