package visca

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/ctenhank/viscactl/internal/logger"
)

// Identity is the logical camera a connection speaks for.
type Identity struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// Stats receives traffic notifications. Implementations must be safe for concurrent use.
type Stats interface {
	PacketSent(camera string)
	SendFailed(camera string)
	Reconnected(camera string)
}

type nilStats struct{}

func (nilStats) PacketSent(string)  {}
func (nilStats) SendFailed(string)  {}
func (nilStats) Reconnected(string) {}

type connState int

const (
	connStateUninitialized connState = iota
	connStateReady
	connStateClosed
)

// Conn is a VISCA-over-IP connection to a single camera.
// Address, Port, Name, Parent and Stats are read by Initialize only;
// afterwards the endpoint changes through UpdateConnection.
type Conn struct {
	Name    string
	Address string
	Port    int
	Parent  logger.Writer
	Stats   Stats

	mutex      sync.Mutex
	state      connState
	address    string
	port       int
	socket     *net.UDPConn
	reconciles int
}

// NewConn allocates and initializes a Conn.
func NewConn(address string, port int, parent logger.Writer) (*Conn, error) {
	c := &Conn{
		Address: address,
		Port:    port,
		Parent:  parent,
	}
	err := c.Initialize()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewConnFromIdentity allocates and initializes a Conn for a camera identity.
func NewConnFromIdentity(id Identity, parent logger.Writer, stats Stats) (*Conn, error) {
	c := &Conn{
		Name:    id.Name,
		Address: id.Address,
		Port:    id.Port,
		Parent:  parent,
		Stats:   stats,
	}
	err := c.Initialize()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize opens the socket. On error the connection stays unusable.
func (c *Conn) Initialize() error {
	if c.Parent == nil {
		c.Parent = logger.Discard
	}
	if c.Stats == nil {
		c.Stats = nilStats{}
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != connStateUninitialized {
		return fmt.Errorf("connection already initialized")
	}

	dest, err := resolveEndpoint(c.Address, c.Port)
	if err != nil {
		return err
	}

	socket, err := net.DialUDP("udp", nil, dest)
	if err != nil {
		return fmt.Errorf("unable to open socket to %s: %w", dest, err)
	}

	c.socket = socket
	c.address = c.Address
	c.port = c.Port
	c.state = connStateReady

	c.Log(logger.Info, "created for %s", dest)

	return nil
}

// Log implements logger.Writer.
func (c *Conn) Log(level logger.Level, format string, args ...interface{}) {
	c.Parent.Log(level, "[visca "+c.Name+"] "+format, args...)
}

// Identity returns the camera name and the current endpoint.
func (c *Conn) Identity() Identity {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return Identity{Name: c.Name, Address: c.address, Port: c.port}
}

// SetName changes the camera name used in logs and statistics.
func (c *Conn) SetName(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.Name = name
}

// UpdateConnection points the connection to a new endpoint.
// It does nothing when the endpoint is unchanged. On error the previous
// endpoint is kept. A send in progress completes on the previous endpoint.
func (c *Conn) UpdateConnection(address string, port int) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case connStateUninitialized:
		return ErrNotInitialized
	case connStateClosed:
		return ErrClosedConnection
	}

	dest, err := resolveEndpoint(address, port)
	if err != nil {
		return err
	}

	if dest.IP.Equal(net.ParseIP(c.address)) && dest.Port == c.port {
		return nil
	}

	socket, err := net.DialUDP("udp", nil, dest)
	if err != nil {
		return fmt.Errorf("unable to open socket to %s: %w", dest, err)
	}

	c.Log(logger.Info, "endpoint changed: %s:%d -> %s", c.address, c.port, dest)

	c.socket.Close()
	c.socket = socket
	c.address = address
	c.port = port

	return nil
}

// Close releases the socket. It can be called multiple times.
func (c *Conn) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == connStateClosed {
		return
	}

	if c.socket != nil {
		c.socket.Close()
		c.socket = nil
		c.Log(logger.Info, "closed")
	}
	c.state = connStateClosed
}

// Send encodes and transmits a command.
// Nothing is transmitted when the command does not encode to a packet.
func (c *Conn) Send(ctx context.Context, cmd Command) error {
	packet := cmd.Encode()
	if len(packet) == 0 {
		return fmt.Errorf("%w: kind %d", ErrUnknownCommand, cmd.Kind)
	}
	return c.send(ctx, packet)
}

func (c *Conn) send(ctx context.Context, packet []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case connStateUninitialized:
		return ErrNotInitialized
	case connStateClosed:
		return ErrClosedConnection
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	err = c.reconcile()
	if err != nil {
		c.Stats.SendFailed(c.Name)
		return &SendError{Dest: net.JoinHostPort(c.address, strconv.Itoa(c.port)), Err: err}
	}

	deadline, _ := ctx.Deadline()
	c.socket.SetWriteDeadline(deadline)

	_, err = c.socket.Write(packet)
	if err != nil {
		c.Stats.SendFailed(c.Name)
		c.Log(logger.Warn, "send failed: %v", err)
		return &SendError{Dest: c.socket.RemoteAddr().String(), Err: err}
	}

	c.Stats.PacketSent(c.Name)
	c.Log(logger.Debug, "sent [% X] to %s", packet, c.socket.RemoteAddr())

	return nil
}

// reconcile makes sure the socket is connected to the recorded endpoint
// before a packet leaves.
func (c *Conn) reconcile() error {
	dest, err := resolveEndpoint(c.address, c.port)
	if err != nil {
		return err
	}

	if endpointEqual(c.socket.RemoteAddr(), dest) {
		return nil
	}

	c.Log(logger.Debug, "endpoint mismatch: socket is connected to %s, expected %s", c.socket.RemoteAddr(), dest)

	socket, err := net.DialUDP("udp", nil, dest)
	if err != nil {
		return err
	}

	c.socket.Close()
	c.socket = socket
	c.reconciles++
	c.Stats.Reconnected(c.Name)

	return nil
}

func resolveEndpoint(address string, port int) (*net.UDPAddr, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return nil, fmt.Errorf("%w: '%s' is not an IP address", ErrInvalidAddress, address)
	}

	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidAddress, port)
	}

	return &net.UDPAddr{IP: ip, Port: port}, nil
}

func endpointEqual(a net.Addr, b *net.UDPAddr) bool {
	ua, ok := a.(*net.UDPAddr)
	if !ok {
		return false
	}
	return ua.IP.Equal(b.IP) && ua.Port == b.Port
}
