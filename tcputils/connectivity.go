package tcputils

import (
	"net"
	"time"
)

// SetTCPDeadline sets read and write deadlines (in milliseconds) on a tcp connection.
// A non-positive timeout leaves the corresponding deadline unset.
func SetTCPDeadline(conn net.Conn, readTimeout int32, writeTimeout int32) error {

	now := time.Now()
	if readTimeout > 0 {
		if err := conn.SetReadDeadline(now.Add(time.Millisecond * time.Duration(readTimeout))); err != nil {
			return err
		}
	}
	if writeTimeout > 0 {
		if err := conn.SetWriteDeadline(now.Add(time.Millisecond * time.Duration(writeTimeout))); err != nil {
			return err
		}
	}

	return nil
}

// RemoteAddr returns the peer address of conn, or "-" if unknown.
func RemoteAddr(conn net.Conn) string {

	if conn == nil || conn.RemoteAddr() == nil {
		return "-"
	}

	return conn.RemoteAddr().String()
}
