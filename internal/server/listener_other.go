//go:build !linux && !darwin

package server

import "net"

// GetListener calls Listen; socket activation is unsupported here.
func GetListener(addr string) (net.Listener, error) {
	return Listen(addr)
}
