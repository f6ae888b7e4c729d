//go:build windows

package server

// setSocketPermissions is a no-op on Windows; pipe access is governed
// by the pipe security descriptor, not file permissions.
func setSocketPermissions(path string) {
}
