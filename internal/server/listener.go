// Package server opens the HTTP listener. Addresses of the form
// "unix:/path/to.sock" listen on a unix socket; anything else is TCP.
package server

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"strings"
)

const unixPrefix = "unix:"

// Listen opens addr without socket activation.
func Listen(addr string) (net.Listener, error) {
	if path, ok := strings.CutPrefix(addr, unixPrefix); ok {
		// a socket file left by a previous run blocks bind
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return net.Listen("unix", path)
	}
	return net.Listen("tcp", addr)
}
