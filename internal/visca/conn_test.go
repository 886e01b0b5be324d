package visca_test

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ctenhank/viscactl/internal/visca"
	"github.com/stretchr/testify/require"
)

func newCamera(t *testing.T) (*net.UDPConn, int) {
	l, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, l.LocalAddr().(*net.UDPAddr).Port
}

func readPacket(t *testing.T, l *net.UDPConn) []byte {
	l.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, _, err := l.ReadFromUDP(buf)
	require.NoError(t, err)
	return buf[:n]
}

func requireNoPacket(t *testing.T, l *net.UDPConn) {
	l.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	buf := make([]byte, 64)
	_, _, err := l.ReadFromUDP(buf)
	var ne net.Error
	require.True(t, errors.As(err, &ne) && ne.Timeout(), "unexpected packet or error: %v", err)
}

type testStats struct {
	mutex       sync.Mutex
	sent        int
	failed      int
	reconnected int
}

func (s *testStats) PacketSent(string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sent++
}

func (s *testStats) SendFailed(string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failed++
}

func (s *testStats) Reconnected(string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reconnected++
}

func TestConnZoom(t *testing.T) {
	cam, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)
	defer c.Close()

	err = c.ZoomIn(context.Background(), 0x04)
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0x01, 0x04, 0x07, 0x24, 0xFF}, readPacket(t, cam))

	err = c.ZoomStop(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0x01, 0x04, 0x07, 0x00, 0xFF}, readPacket(t, cam))
}

func TestConnPresetRecall(t *testing.T) {
	cam, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)
	defer c.Close()

	err = c.PresetRecall(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x81, 0x01, 0x04, 0x3F, 0x02, 0x02, 0xFF}, readPacket(t, cam))

	err = c.PresetSet(context.Background(), 4)
	require.ErrorIs(t, err, visca.ErrInvalidPresetSlot)
}

func TestConnIntents(t *testing.T) {
	cam, port := newCamera(t)

	c, err := visca.NewConnFromIdentity(visca.Identity{Name: "cam1", Address: "127.0.0.1", Port: port}, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	for _, ca := range []struct {
		name string
		fn   func() error
		want []byte
	}{
		{"pan left", func() error { return c.PanLeft(ctx, 0x0C) }, []byte{0x81, 0x01, 0x06, 0x01, 0x0C, 0x00, 0x01, 0x03, 0xFF}},
		{"pan right", func() error { return c.PanRight(ctx, 0x10) }, []byte{0x81, 0x01, 0x06, 0x01, 0x10, 0x00, 0x02, 0x03, 0xFF}},
		{"tilt up", func() error { return c.TiltUp(ctx, 0x05) }, []byte{0x81, 0x01, 0x06, 0x01, 0x00, 0x05, 0x03, 0x01, 0xFF}},
		{"tilt down", func() error { return c.TiltDown(ctx, 0x05) }, []byte{0x81, 0x01, 0x06, 0x01, 0x00, 0x05, 0x03, 0x02, 0xFF}},
		{"up left", func() error { return c.PanTiltUpLeft(ctx, 1, 2) }, []byte{0x81, 0x01, 0x06, 0x01, 0x01, 0x02, 0x01, 0x01, 0xFF}},
		{"up right", func() error { return c.PanTiltUpRight(ctx, 1, 2) }, []byte{0x81, 0x01, 0x06, 0x01, 0x01, 0x02, 0x02, 0x01, 0xFF}},
		{"down left", func() error { return c.PanTiltDownLeft(ctx, 1, 2) }, []byte{0x81, 0x01, 0x06, 0x01, 0x01, 0x02, 0x01, 0x02, 0xFF}},
		{"down right", func() error { return c.PanTiltDownRight(ctx, 1, 2) }, []byte{0x81, 0x01, 0x06, 0x01, 0x01, 0x02, 0x02, 0x02, 0xFF}},
		{"zoom out", func() error { return c.ZoomOut(ctx, 0x02) }, []byte{0x81, 0x01, 0x04, 0x07, 0x32, 0xFF}},
		{"stop", func() error { return c.Stop(ctx) }, visca.Stop()},
		{"home", func() error { return c.Home(ctx) }, visca.Home()},
		{"focus near", func() error { return c.FocusNear(ctx) }, visca.Focus(visca.FocusNear)},
		{"focus far", func() error { return c.FocusFar(ctx) }, visca.Focus(visca.FocusFar)},
		{"focus stop", func() error { return c.FocusStop(ctx) }, visca.Focus(visca.FocusStop)},
		{"focus auto", func() error { return c.FocusAuto(ctx) }, visca.Focus(visca.FocusAuto)},
		{"focus manual", func() error { return c.FocusManual(ctx) }, visca.Focus(visca.FocusManual)},
		{"focus one push", func() error { return c.FocusOnePush(ctx) }, visca.Focus(visca.FocusOnePush)},
		{"wb auto", func() error { return c.WhiteBalanceAuto(ctx) }, visca.WhiteBalance(visca.WhiteBalanceAuto)},
		{"wb indoor", func() error { return c.WhiteBalanceIndoor(ctx) }, visca.WhiteBalance(visca.WhiteBalanceIndoor)},
		{"wb outdoor", func() error { return c.WhiteBalanceOutdoor(ctx) }, visca.WhiteBalance(visca.WhiteBalanceOutdoor)},
		{"wb one push", func() error { return c.WhiteBalanceOnePush(ctx) }, visca.WhiteBalance(visca.WhiteBalanceOnePush)},
		{"wb atw", func() error { return c.WhiteBalanceATW(ctx) }, visca.WhiteBalance(visca.WhiteBalanceATW)},
		{"wb trigger", func() error { return c.WhiteBalanceOnePushTrigger(ctx) }, visca.WhiteBalance(visca.WhiteBalanceOnePushTrigger)},
		{"ae auto", func() error { return c.ExposureFullAuto(ctx) }, visca.Exposure(visca.ExposureFullAuto)},
		{"ae manual", func() error { return c.ExposureManual(ctx) }, visca.Exposure(visca.ExposureManual)},
		{"ae shutter", func() error { return c.ExposureShutterPriority(ctx) }, visca.Exposure(visca.ExposureShutterPriority)},
		{"ae iris", func() error { return c.ExposureIrisPriority(ctx) }, visca.Exposure(visca.ExposureIrisPriority)},
		{"preset set", func() error { return c.PresetSet(ctx, 1) }, visca.Preset(visca.PresetSet, 1)},
		{"preset reset", func() error { return c.PresetReset(ctx, 3) }, visca.Preset(visca.PresetReset, 3)},
	} {
		t.Run(ca.name, func(t *testing.T) {
			require.NoError(t, ca.fn())
			require.Equal(t, ca.want, readPacket(t, cam))
		})
	}
}

func TestConnOrdering(t *testing.T) {
	cam, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.PanLeft(ctx, 0x0C))
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Home(ctx))

	require.Equal(t, visca.PanTilt(true, false, false, false, 0x0C, 0x00), readPacket(t, cam))
	require.Equal(t, visca.Stop(), readPacket(t, cam))
	require.Equal(t, visca.Home(), readPacket(t, cam))
}

func TestConnUpdateSameEndpoint(t *testing.T) {
	_, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)
	defer c.Close()

	before := c.Socket()

	err = c.UpdateConnection("127.0.0.1", port)
	require.NoError(t, err)
	require.Same(t, before, c.Socket())

	require.NoError(t, c.Stop(context.Background()))
	require.Equal(t, 0, c.Reconciles())
	require.Same(t, before, c.Socket())
}

func TestConnUpdateNewEndpoint(t *testing.T) {
	cam1, port1 := newCamera(t)
	cam2, port2 := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port1, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Home(context.Background()))
	require.Equal(t, visca.Home(), readPacket(t, cam1))

	before := c.Socket()

	err = c.UpdateConnection("127.0.0.1", port2)
	require.NoError(t, err)
	require.NotSame(t, before, c.Socket())
	require.Equal(t, visca.Identity{Address: "127.0.0.1", Port: port2}, c.Identity())

	require.NoError(t, c.ZoomStop(context.Background()))
	require.Equal(t, visca.ZoomStop(), readPacket(t, cam2))
	requireNoPacket(t, cam1)
	require.Equal(t, "127.0.0.1:"+strconv.Itoa(port2), c.Socket().RemoteAddr().String())
}

func TestConnUpdateInvalid(t *testing.T) {
	cam, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)
	defer c.Close()

	before := c.Socket()

	err = c.UpdateConnection("not-an-ip", port)
	require.ErrorIs(t, err, visca.ErrInvalidAddress)

	err = c.UpdateConnection("127.0.0.1", 70000)
	require.ErrorIs(t, err, visca.ErrInvalidAddress)

	require.Same(t, before, c.Socket())
	require.NoError(t, c.Home(context.Background()))
	require.Equal(t, visca.Home(), readPacket(t, cam))
}

func TestConnReconcile(t *testing.T) {
	cam1, port1 := newCamera(t)
	cam2, port2 := newCamera(t)

	stats := &testStats{}
	c, err := visca.NewConnFromIdentity(visca.Identity{Name: "cam", Address: "127.0.0.1", Port: port1}, nil, stats)
	require.NoError(t, err)
	defer c.Close()

	c.SetRecordedEndpoint("127.0.0.1", port2)

	require.NoError(t, c.Home(context.Background()))
	require.Equal(t, visca.Home(), readPacket(t, cam2))
	requireNoPacket(t, cam1)
	require.Equal(t, 1, c.Reconciles())
	require.Equal(t, 1, stats.reconnected)
	require.Equal(t, 1, stats.sent)

	require.NoError(t, c.Home(context.Background()))
	require.Equal(t, visca.Home(), readPacket(t, cam2))
	require.Equal(t, 1, c.Reconciles())
}

func TestConnInvalidAddress(t *testing.T) {
	c := &visca.Conn{Address: "not-an-ip", Port: visca.DefaultPort}
	err := c.Initialize()
	require.ErrorIs(t, err, visca.ErrInvalidAddress)

	err = c.PanLeft(context.Background(), visca.DefaultPanSpeed)
	require.ErrorIs(t, err, visca.ErrNotInitialized)

	err = c.UpdateConnection("127.0.0.1", visca.DefaultPort)
	require.ErrorIs(t, err, visca.ErrNotInitialized)

	c.Close()

	_, err = visca.NewConn("not-an-ip", visca.DefaultPort, nil)
	require.ErrorIs(t, err, visca.ErrInvalidAddress)

	_, err = visca.NewConn("127.0.0.1", -1, nil)
	require.ErrorIs(t, err, visca.ErrInvalidAddress)
}

func TestConnDefaultPort(t *testing.T) {
	c, err := visca.NewConn("127.0.0.1", 0, nil)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, visca.DefaultPort, c.Identity().Port)
}

func TestConnIPv6(t *testing.T) {
	l, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv6loopback})
	if err != nil {
		t.Skip("IPv6 loopback not available")
	}
	defer l.Close()

	c, err := visca.NewConn("::1", l.LocalAddr().(*net.UDPAddr).Port, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Home(context.Background()))
	require.Equal(t, visca.Home(), readPacket(t, l))
}

func TestConnClose(t *testing.T) {
	_, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)

	c.Close()

	err = c.PanLeft(context.Background(), visca.DefaultPanSpeed)
	require.ErrorIs(t, err, visca.ErrClosedConnection)

	err = c.UpdateConnection("127.0.0.2", port)
	require.ErrorIs(t, err, visca.ErrClosedConnection)

	require.NotPanics(t, c.Close)
}

func TestConnCanceledContext(t *testing.T) {
	cam, port := newCamera(t)

	stats := &testStats{}
	c, err := visca.NewConnFromIdentity(visca.Identity{Address: "127.0.0.1", Port: port}, nil, stats)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Stop(ctx)
	require.ErrorIs(t, err, context.Canceled)
	requireNoPacket(t, cam)

	require.NoError(t, c.Stop(context.Background()))
	require.Equal(t, visca.Stop(), readPacket(t, cam))
	require.Equal(t, 1, stats.sent)
}

func TestConnConcurrentSends(t *testing.T) {
	cam, port := newCamera(t)

	c, err := visca.NewConn("127.0.0.1", port, nil)
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop(context.Background())
		}()
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		require.Equal(t, visca.Stop(), readPacket(t, cam))
	}
}

func TestSendError(t *testing.T) {
	err := error(&visca.SendError{Dest: "10.0.0.5:52381", Err: errors.New("network is unreachable")})
	require.ErrorIs(t, err, visca.ErrSendFailure)
	require.EqualError(t, err, "unable to send to 10.0.0.5:52381: network is unreachable")
}

func TestConnSendFailure(t *testing.T) {
	cam, port := newCamera(t)
	cam.Close()

	stats := &testStats{}
	c, err := visca.NewConnFromIdentity(visca.Identity{Name: "cam1", Address: "127.0.0.1", Port: port}, nil, stats)
	require.NoError(t, err)
	defer c.Close()

	// the refusal of a datagram is reported by one of the following writes
	var sendErr error
	for i := 0; i < 20 && sendErr == nil; i++ {
		sendErr = c.Home(context.Background())
		if sendErr == nil {
			time.Sleep(10 * time.Millisecond)
		}
	}
	require.ErrorIs(t, sendErr, visca.ErrSendFailure)

	var se *visca.SendError
	require.ErrorAs(t, sendErr, &se)
	require.Equal(t, "127.0.0.1:"+strconv.Itoa(port), se.Dest)

	stats.mutex.Lock()
	require.Equal(t, 1, stats.failed)
	stats.mutex.Unlock()

	// the connection stays usable
	err = c.Home(context.Background())
	require.NoError(t, err)
}

func TestConnSendUnknownCommand(t *testing.T) {
	cam, port := newCamera(t)

	stats := &testStats{}
	c, err := visca.NewConnFromIdentity(visca.Identity{Name: "cam1", Address: "127.0.0.1", Port: port}, nil, stats)
	require.NoError(t, err)
	defer c.Close()

	for _, cmd := range []visca.Command{
		{},
		{Kind: visca.KindFocus, Focus: visca.FocusMode(42)},
		{Kind: visca.KindWhiteBalance, WhiteBalance: visca.WhiteBalanceMode(9)},
	} {
		err = c.Send(context.Background(), cmd)
		require.ErrorIs(t, err, visca.ErrUnknownCommand)
	}

	requireNoPacket(t, cam)
	require.Equal(t, 0, stats.sent)
	require.Equal(t, 0, stats.failed)

	err = c.Send(context.Background(), visca.Command{Kind: visca.KindHome})
	require.NoError(t, err)
	require.Equal(t, visca.Home(), readPacket(t, cam))
}
