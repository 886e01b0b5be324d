// Package control contains the operator API.
package control

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ctenhank/viscactl/internal/auth"
	"github.com/ctenhank/viscactl/internal/conf"
	"github.com/ctenhank/viscactl/internal/defs"
	"github.com/ctenhank/viscactl/internal/logger"
	"github.com/ctenhank/viscactl/internal/metrics"
	"github.com/ctenhank/viscactl/internal/registry"
	"github.com/ctenhank/viscactl/internal/visca"
)

const closeTimeout = 5 * time.Second

type apiParent interface {
	logger.Writer
}

// Control is the operator API.
type Control struct {
	Address     string
	ReadTimeout conf.StringDuration
	AllowOrigin string
	Conf        *conf.Conf
	Registry    *registry.Registry
	Auth        *auth.Manager
	Metrics     *metrics.Metrics
	Parent      apiParent

	ln         net.Listener
	httpServer *http.Server

	mutex  sync.RWMutex
	rooms  map[string]*ptzRoom
	closed bool
}

// Initialize initializes Control.
func (c *Control) Initialize() error {
	if c.Auth == nil {
		c.Auth = &auth.Manager{}
	}
	c.rooms = make(map[string]*ptzRoom)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(c.middlewareOrigin, c.middlewareAuth)

	group := router.Group("/v1")

	group.GET("/cameras", c.onCamerasList)
	group.GET("/cameras/:name", c.onCamerasGet)
	group.PATCH("/cameras/:name", c.onCamerasPatch)
	group.POST("/cameras/:name/ptz", c.onPTZ)
	group.GET("/cameras/:name/ws", c.onPTZJoin)
	group.GET("/actions", c.onActionsList)
	group.GET("/active", c.onActiveGet)
	group.POST("/active/:name", c.onActiveSet)

	if c.Metrics != nil {
		router.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
	}

	var err error
	c.ln, err = net.Listen("tcp", c.Address)
	if err != nil {
		return err
	}

	c.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: time.Duration(c.ReadTimeout),
		ReadTimeout:       time.Duration(c.ReadTimeout),
	}

	go c.httpServer.Serve(c.ln)

	c.Log(logger.Info, "listener opened on "+c.ln.Addr().String())

	return nil
}

// Log implements logger.Writer.
func (c *Control) Log(level logger.Level, format string, args ...interface{}) {
	c.Parent.Log(level, "[Control] "+format, args...)
}

// Close closes Control and waits for the operators to be disconnected.
func (c *Control) Close() {
	c.Log(logger.Info, "listener is closing")

	c.mutex.Lock()
	c.closed = true
	rooms := c.rooms
	c.rooms = nil
	c.mutex.Unlock()

	ctx, ctxCancel := context.WithTimeout(context.Background(), closeTimeout)
	defer ctxCancel()
	c.httpServer.Shutdown(ctx)
	c.ln.Close() // in case Shutdown() is called before Serve()

	for _, r := range rooms {
		r.close()
	}
}

// ReloadConf is called when the configuration changes.
func (c *Control) ReloadConf(newConf *conf.Conf) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.Conf = newConf
}

// CameraRemoved is called when a camera leaves the registry.
// Operators watching it are disconnected.
func (c *Control) CameraRemoved(name string) {
	c.closeRoom(name)
}

func (c *Control) closeRoom(name string) {
	c.mutex.Lock()
	r, ok := c.rooms[name]
	delete(c.rooms, name)
	c.mutex.Unlock()

	if ok {
		r.close()
	}
}

func (c *Control) room(name string) *ptzRoom {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil
	}

	r, ok := c.rooms[name]
	if !ok {
		r = newPTZRoom(name, c)
		c.rooms[name] = r
	}
	return r
}

// params fills missing speeds with the ones configured for the camera.
func (c *Control) params(name string, req defs.APIPTZRequest) visca.Params {
	p := visca.Params{
		Speed:     req.Speed,
		TiltSpeed: req.TiltSpeed,
		Slot:      req.Slot,
	}

	if p.Speed != 0 {
		return p
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.Conf == nil {
		return p
	}

	cam, ok := c.Conf.Camera(name)
	if !ok {
		return p
	}

	if strings.HasPrefix(req.Action, "zoom-") {
		p.Speed = cam.ZoomSpeed
	} else {
		p.Speed = cam.PanSpeed
		if p.TiltSpeed == 0 {
			p.TiltSpeed = cam.TiltSpeed
		}
	}

	return p
}

// apply sends an operator action to a camera and returns the transmitted packet.
func (c *Control) apply(ctx context.Context, name string, req defs.APIPTZRequest) ([]byte, error) {
	conn, err := c.Registry.Get(name)
	if err != nil {
		return nil, err
	}

	cmd, err := visca.ParseCommand(req.Action, c.params(name, req))
	if err != nil {
		return nil, err
	}

	err = conn.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return cmd.Encode(), nil
}

func hexPacket(byts []byte) string {
	return fmt.Sprintf("% X", byts)
}
