package userenum

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"time"
)

const (
	sshClientIdent = "SSH-2.0-bsh_client\r\n"
	sshReadSize    = 1024
)

// checkSSH opens a connection to the SSH port, reads the server banner,
// sends a client identification and reads the reply. Any "SSH-" data from
// the server counts as the service being available.
func (e *Enumerator) checkSSH(ctx context.Context, host string) (bool, string) {
	timeout := e.SSHTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(e.SSHPort)))
	if err != nil {
		e.Logger.Debug().Err(err).Str("host", host).Msg("ssh dial failed")
		return false, ""
	}
	defer conn.Close()

	wait := e.ReadWait
	if wait <= 0 {
		wait = time.Second
	}
	banner := readOnce(conn, wait)
	if _, err := conn.Write([]byte(sshClientIdent)); err != nil {
		return bytes.Contains(banner, []byte("SSH-")), MethodSSHAvailable
	}
	reply := readOnce(conn, wait)

	if bytes.Contains(banner, []byte("SSH-")) || bytes.Contains(reply, []byte("SSH-")) {
		return true, MethodSSHAvailable
	}
	return false, ""
}

func readOnce(conn net.Conn, wait time.Duration) []byte {
	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return nil
	}
	buf := make([]byte, sshReadSize)
	n, _ := conn.Read(buf)
	return buf[:max(n, 0)]
}
