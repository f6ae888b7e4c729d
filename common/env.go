// Package common provides shared types and constants used across the
// grabtube client-daemon communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom socket path.
	SocketPathEnv = "GRABTUBE_SOCKET_PATH"

	// TCPPortEnv is the environment variable for a custom TCP port.
	TCPPortEnv = "GRABTUBE_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "GRABTUBE_FORCE_TCP"

	// PipeNameEnv is the environment variable for a custom Windows
	// named-pipe name.
	PipeNameEnv = "GRABTUBE_PIPE_NAME"

	// ServerURLEnv is the environment variable for the download server's
	// base URL.
	ServerURLEnv = "GRABTUBE_SERVER_URL"

	// DBPathEnv is the environment variable for the schedule database path.
	DBPathEnv = "GRABTUBE_DB_PATH"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "GRABTUBE_DEBUG"

	// ServerTokenEnv is the environment variable for the download server's
	// auth token.
	ServerTokenEnv = "GRABTUBE_SERVER_TOKEN"

	// WebPortEnv is the environment variable for the daemon's HTTP port
	// (JSON-RPC, websocket, metrics).
	WebPortEnv = "GRABTUBE_WEB_PORT"

	// ListenAllEnv makes the web server bind all interfaces instead of
	// loopback.
	ListenAllEnv = "GRABTUBE_LISTEN_ALL"

	// RPCSecretEnv is the environment variable for the web RPC auth token.
	RPCSecretEnv = "GRABTUBE_RPC_SECRET"

	// LogPathEnv is the environment variable for the daemon log file.
	LogPathEnv = "GRABTUBE_LOG_PATH"

	// CleanupCronEnv is the environment variable for the history cleanup
	// cron expression.
	CleanupCronEnv = "GRABTUBE_CLEANUP_CRON"

	// RetentionDaysEnv is the environment variable for the history
	// retention window, in days.
	RetentionDaysEnv = "GRABTUBE_RETENTION_DAYS"

	// CatchUpEnv makes the scheduler execute occurrences missed while the
	// daemon was down.
	CatchUpEnv = "GRABTUBE_CATCH_UP"
)
