package control

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ctenhank/viscactl/internal/defs"
	"github.com/ctenhank/viscactl/internal/logger"
	"github.com/ctenhank/viscactl/internal/registry"
	"github.com/ctenhank/viscactl/internal/visca"
)

var pauseAfterAuthError = 2 * time.Second

func errorStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrCameraNotFound):
		return http.StatusNotFound

	case errors.Is(err, registry.ErrCameraExists):
		return http.StatusConflict

	case errors.Is(err, visca.ErrSendFailure),
		errors.Is(err, visca.ErrClosedConnection),
		errors.Is(err, visca.ErrNotInitialized):
		return http.StatusBadGateway
	}

	return http.StatusBadRequest
}

func (c *Control) writeError(ctx *gin.Context, status int, err error) {
	// show error in logs
	c.Log(logger.Error, err.Error())

	// add error to response
	ctx.JSON(status, &defs.APIError{
		Error: err.Error(),
	})
}

func (c *Control) middlewareOrigin(ctx *gin.Context) {
	ctx.Header("Access-Control-Allow-Origin", c.AllowOrigin)
	ctx.Header("Access-Control-Allow-Credentials", "true")

	// preflight requests
	if ctx.Request.Method == http.MethodOptions &&
		ctx.Request.Header.Get("Access-Control-Request-Method") != "" {
		ctx.Header("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PATCH")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		ctx.AbortWithStatus(http.StatusNoContent)
		return
	}
}

func (c *Control) middlewareAuth(ctx *gin.Context) {
	if !c.Auth.Enabled() {
		return
	}

	user, pass, _ := ctx.Request.BasicAuth()

	err := c.Auth.Authenticate(user, pass)
	if err != nil {
		if user != "" {
			c.Log(logger.Info, "authentication failed for user '%s'", user)

			// wait some seconds to mitigate brute force attacks
			<-time.After(pauseAfterAuthError)
		}
		ctx.Header("WWW-Authenticate", `Basic realm="viscactl"`)
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, &defs.APIError{Error: err.Error()})
		return
	}
}

func (c *Control) apiCamera(id visca.Identity, active string) defs.APICamera {
	return defs.APICamera{
		Name:    id.Name,
		Address: id.Address,
		Port:    id.Port,
		Active:  id.Name == active,
	}
}

func (c *Control) onCamerasList(ctx *gin.Context) {
	active, _, _ := c.Registry.Active()

	list := c.Registry.List()
	data := defs.APICameraList{
		Items: make([]defs.APICamera, len(list)),
	}
	for i, id := range list {
		data.Items[i] = c.apiCamera(id, active)
	}

	ctx.JSON(http.StatusOK, data)
}

func (c *Control) findCamera(name string) (visca.Identity, error) {
	for _, id := range c.Registry.List() {
		if id.Name == name {
			return id, nil
		}
	}
	return visca.Identity{}, registry.ErrCameraNotFound
}

func (c *Control) onCamerasGet(ctx *gin.Context) {
	c.writeCamera(ctx, ctx.Param("name"))
}

func (c *Control) writeCamera(ctx *gin.Context, name string) {
	id, err := c.findCamera(name)
	if err != nil {
		c.writeError(ctx, http.StatusNotFound, err)
		return
	}

	active, _, _ := c.Registry.Active()

	ctx.JSON(http.StatusOK, c.apiCamera(id, active))
}

func (c *Control) onCamerasPatch(ctx *gin.Context) {
	name := ctx.Param("name")

	var req defs.APICameraPatch
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		c.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		err = c.Registry.Rename(name, *req.Name)
		if err != nil {
			c.writeError(ctx, errorStatus(err), err)
			return
		}

		c.closeRoom(name)
		name = *req.Name
	}

	if req.Index != nil {
		err = c.Registry.Reorder(name, *req.Index)
		if err != nil {
			c.writeError(ctx, errorStatus(err), err)
			return
		}
	}

	c.writeCamera(ctx, name)
}

func (c *Control) onActionsList(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"items": visca.Actions(),
	})
}

func (c *Control) onActiveGet(ctx *gin.Context) {
	name, _, ok := c.Registry.Active()
	if !ok {
		c.writeError(ctx, http.StatusNotFound, errors.New("no active camera"))
		return
	}

	id, err := c.findCamera(name)
	if err != nil {
		c.writeError(ctx, http.StatusNotFound, err)
		return
	}

	ctx.JSON(http.StatusOK, c.apiCamera(id, name))
}

func (c *Control) onActiveSet(ctx *gin.Context) {
	err := c.Registry.SetActive(ctx.Param("name"))
	if err != nil {
		c.writeError(ctx, errorStatus(err), err)
		return
	}

	c.onActiveGet(ctx)
}

func (c *Control) onPTZ(ctx *gin.Context) {
	name := ctx.Param("name")

	var req defs.APIPTZRequest
	err := ctx.ShouldBindJSON(&req)
	if err != nil {
		c.writeError(ctx, http.StatusBadRequest, err)
		return
	}

	packet, err := c.apply(ctx.Request.Context(), name, req)
	if err != nil {
		c.writeError(ctx, errorStatus(err), err)
		return
	}

	res := defs.APIPTZResult{
		Camera: name,
		Action: req.Action,
		Packet: hexPacket(packet),
	}

	c.mutex.RLock()
	r, ok := c.rooms[name]
	c.mutex.RUnlock()
	if ok {
		r.broadcastResult(res)
	}

	ctx.JSON(http.StatusOK, res)
}

func (c *Control) onPTZJoin(ctx *gin.Context) {
	name := ctx.Param("name")

	_, err := c.Registry.Get(name)
	if err != nil {
		c.writeError(ctx, http.StatusNotFound, err)
		return
	}

	r := c.room(name)
	if r == nil {
		c.writeError(ctx, http.StatusServiceUnavailable, errors.New("server is closing"))
		return
	}

	r.serveWs(ctx.Writer, ctx.Request)
}
