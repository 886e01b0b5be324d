package visca

import "net"

func (c *Conn) Socket() net.Conn {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.socket == nil {
		return nil
	}
	return c.socket
}

func (c *Conn) Reconciles() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.reconciles
}

// SetRecordedEndpoint changes the recorded endpoint without touching the socket.
func (c *Conn) SetRecordedEndpoint(address string, port int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.address = address
	c.port = port
}
