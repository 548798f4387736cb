//go:build linux || darwin

package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

// first inherited descriptor under systemd socket activation
const listenFDsStart = 3

// GetListener uses the socket passed by systemd when SOCKET_ACTIVATION=1,
// otherwise it calls Listen.
func GetListener(addr string) (net.Listener, error) {
	if os.Getenv("SOCKET_ACTIVATION") != "1" {
		return Listen(addr)
	}
	if os.Getenv("LISTEN_FDS") != "1" {
		return nil, errors.New("socket activation requested but LISTEN_FDS is not 1")
	}
	if pid, err := strconv.Atoi(os.Getenv("LISTEN_PID")); err != nil || pid != os.Getpid() {
		return nil, fmt.Errorf("socket activation: LISTEN_PID %q is not this process", os.Getenv("LISTEN_PID"))
	}
	f := os.NewFile(uintptr(listenFDsStart), "listener")
	if f == nil {
		return nil, errors.New("socket activation: invalid listener descriptor")
	}
	defer f.Close()
	return net.FileListener(f)
}
