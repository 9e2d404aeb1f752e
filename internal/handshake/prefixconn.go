package handshake

import "net"

// prefixConn wraps a net.Conn whose buffered HTTP-upgrade codec reader
// pulled a few bytes of the peer's first post-handshake binary message
// off the wire along with the CRLFCRLF terminator. Reads drain that
// prefix first, then fall back to the underlying connection, so whatever
// reads the returned stream next never loses bytes the upgrade codec
// happened to read ahead of the terminator.
type prefixConn struct {
	net.Conn
	prefix []byte
}

func withPrefix(conn net.Conn, prefix []byte) net.Conn {
	if len(prefix) == 0 {
		return conn
	}
	buf := make([]byte, len(prefix))
	copy(buf, prefix)
	return &prefixConn{Conn: conn, prefix: buf}
}

func (c *prefixConn) Read(p []byte) (int, error) {
	if len(c.prefix) == 0 {
		return c.Conn.Read(p)
	}
	n := copy(p, c.prefix)
	c.prefix = c.prefix[n:]
	return n, nil
}
