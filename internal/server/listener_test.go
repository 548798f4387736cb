package server

import (
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen_TCP(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	assert.Equal(t, "tcp", ln.Addr().Network())
}

func TestListen_UnixReplacesStaleSocket(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix sockets")
	}
	path := filepath.Join(t.TempDir(), "api.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := Listen("unix:" + path)
	require.NoError(t, err)
	defer ln.Close()

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestGetListener_ActivationWithoutFDs(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("socket activation")
	}
	t.Setenv("SOCKET_ACTIVATION", "1")
	t.Setenv("LISTEN_FDS", "")
	_, err := GetListener("127.0.0.1:0")
	assert.Error(t, err)
}
