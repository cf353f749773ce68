package websocket

import (
	"github.com/gorilla/websocket"
)

// gorillaConn adapts *websocket.Conn to Connection. Only RemoteAddr differs in
// shape; everything else is promoted from the embedded conn.
type gorillaConn struct {
	*websocket.Conn
}

// NewConnectionWrapper wraps a gorilla connection
func NewConnectionWrapper(conn *websocket.Conn) Connection {
	return gorillaConn{Conn: conn}
}

// RemoteAddr returns the remote network address as a string
func (c gorillaConn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
