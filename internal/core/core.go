// Package core contains the main struct of the software.
package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ctenhank/viscactl/internal/auth"
	"github.com/ctenhank/viscactl/internal/conf"
	"github.com/ctenhank/viscactl/internal/confwatcher"
	"github.com/ctenhank/viscactl/internal/control"
	"github.com/ctenhank/viscactl/internal/logger"
	"github.com/ctenhank/viscactl/internal/metrics"
	"github.com/ctenhank/viscactl/internal/registry"
	"github.com/ctenhank/viscactl/internal/visca"
)

var version = "v0.0.0"

var defaultConfPaths = []string{
	"viscactl.yml",
	"/usr/local/etc/viscactl.yml",
	"/usr/etc/viscactl.yml",
	"/etc/viscactl/viscactl.yml",
}

var cli struct {
	Version  bool   `help:"print version"`
	Confpath string `arg:"" default:""`
}

// Core is an instance of viscactl.
type Core struct {
	ctx         context.Context
	ctxCancel   func()
	confPath    string
	conf        *conf.Conf
	logger      *logger.Logger
	metrics     *metrics.Metrics
	registry    *registry.Registry
	control     *control.Control
	confWatcher *confwatcher.ConfWatcher

	// out
	done chan struct{}
}

// New allocates a Core.
func New(args []string) (*Core, bool) {
	parser, err := kong.New(&cli,
		kong.Description("viscactl "+version),
		kong.UsageOnError(),
		kong.ValueFormatter(func(value *kong.Value) string {
			switch value.Name {
			case "confpath":
				return "path to a config file. The default is viscactl.yml."

			default:
				return kong.DefaultHelpValueFormatter(value)
			}
		}))
	if err != nil {
		panic(err)
	}

	_, err = parser.Parse(args)
	parser.FatalIfErrorf(err)

	if cli.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	p := &Core{
		ctx:       ctx,
		ctxCancel: ctxCancel,
		done:      make(chan struct{}),
	}

	p.conf, p.confPath, err = conf.Load(cli.Confpath, defaultConfPaths)
	if err != nil {
		fmt.Printf("ERR: %s\n", err)
		return nil, false
	}

	err = p.createResources(true)
	if err != nil {
		if p.logger != nil {
			p.Log(logger.Error, "%s", err)
		} else {
			fmt.Printf("ERR: %s\n", err)
		}
		p.closeResources(nil)
		return nil, false
	}

	go p.run()

	return p, true
}

// Close closes Core and waits for all goroutines to return.
func (p *Core) Close() {
	p.ctxCancel()
	<-p.done
}

// Wait waits for the Core to exit.
func (p *Core) Wait() {
	<-p.done
}

// Log implements logger.Writer.
func (p *Core) Log(level logger.Level, format string, args ...interface{}) {
	p.logger.Log(level, format, args...)
}

func (p *Core) run() {
	defer close(p.done)

	confChanged := func() chan struct{} {
		if p.confWatcher != nil {
			return p.confWatcher.Watch()
		}
		return make(chan struct{})
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

outer:
	for {
		select {
		case <-confChanged:
			p.Log(logger.Info, "reloading configuration (file changed)")

			newConf, _, err := conf.Load(p.confPath, nil)
			if err != nil {
				p.Log(logger.Error, "%s", err)
				break outer
			}

			err = p.reloadConf(newConf)
			if err != nil {
				p.Log(logger.Error, "%s", err)
				break outer
			}

		case <-interrupt:
			p.Log(logger.Info, "shutting down gracefully")
			break outer

		case <-p.ctx.Done():
			break outer
		}
	}

	p.ctxCancel()

	p.closeResources(nil)
}

func (p *Core) createResources(initial bool) error {
	var err error

	if p.logger == nil {
		p.logger, err = logger.New(
			logger.Level(p.conf.LogLevel),
			p.conf.LogDestinations,
			p.conf.LogFile,
		)
		if err != nil {
			return err
		}
	}

	if initial {
		p.Log(logger.Info, "viscactl %s", version)

		if p.confPath != "" {
			a, _ := filepath.Abs(p.confPath)
			p.Log(logger.Info, "configuration loaded from %s", a)
		} else {
			list := make([]string, len(defaultConfPaths))
			for i, pa := range defaultConfPaths {
				a, _ := filepath.Abs(pa)
				list[i] = a
			}

			p.Log(logger.Warn,
				"configuration file not found (looked in %s), using an empty configuration",
				strings.Join(list, ", "))
		}
	}

	if p.metrics == nil {
		p.metrics = metrics.New()
	}

	if p.registry == nil {
		p.registry = registry.New(p, p.metrics)
		p.registry.OnRemove = p.onCameraRemoved
		p.registry.OnRename = p.onCameraRenamed

		err = p.syncCameras(true)
		if err != nil {
			return err
		}
	}

	if p.conf.API &&
		p.control == nil {
		i := &control.Control{
			Address:     p.conf.APIAddress,
			ReadTimeout: p.conf.APIReadTimeout,
			AllowOrigin: p.conf.APIAllowOrigin,
			Conf:        p.conf,
			Registry:    p.registry,
			Auth:        &auth.Manager{Users: p.conf.APIUsers},
			Metrics: func() *metrics.Metrics {
				if p.conf.Metrics {
					return p.metrics
				}
				return nil
			}(),
			Parent: p,
		}
		err = i.Initialize()
		if err != nil {
			return err
		}
		p.control = i
	}

	if initial && p.confPath != "" {
		cf := &confwatcher.ConfWatcher{FilePath: p.confPath}
		err = cf.Initialize()
		if err != nil {
			return err
		}
		p.confWatcher = cf
	}

	return nil
}

// syncCameras makes the registry match the configured cameras.
func (p *Core) syncCameras(resetActive bool) error {
	ids := make([]visca.Identity, len(p.conf.Cameras))
	for i, cconf := range p.conf.Cameras {
		ids[i] = cconf.Identity()
	}

	// the active camera is not configured anymore
	if cur, _, ok := p.registry.Active(); !ok {
		resetActive = true
	} else if _, ok := p.conf.Camera(cur); !ok {
		resetActive = true
	}

	err := p.registry.Sync(ids)
	if err != nil {
		return err
	}

	if resetActive && p.conf.ActiveCamera != "" {
		return p.registry.SetActive(p.conf.ActiveCamera)
	}

	return nil
}

func (p *Core) onCameraRemoved(name string) {
	p.metrics.Forget(name)

	if p.control != nil {
		p.control.CameraRemoved(name)
	}
}

func (p *Core) onCameraRenamed(oldName string, _ string) {
	p.metrics.Forget(oldName)
}

func (p *Core) closeResources(newConf *conf.Conf) {
	closeLogger := newConf == nil ||
		!reflect.DeepEqual(newConf.LogDestinations, p.conf.LogDestinations) ||
		newConf.LogFile != p.conf.LogFile

	if !closeLogger && newConf.LogLevel != p.conf.LogLevel {
		p.logger.SetLevel(logger.Level(newConf.LogLevel))
	}

	closeControl := newConf == nil ||
		newConf.API != p.conf.API ||
		newConf.APIAddress != p.conf.APIAddress ||
		newConf.APIReadTimeout != p.conf.APIReadTimeout ||
		newConf.APIAllowOrigin != p.conf.APIAllowOrigin ||
		!reflect.DeepEqual(newConf.APIUsers, p.conf.APIUsers) ||
		newConf.Metrics != p.conf.Metrics ||
		closeLogger

	if newConf == nil && p.confWatcher != nil {
		p.confWatcher.Close()
		p.confWatcher = nil
	}

	if p.control != nil {
		if closeControl {
			p.control.Close()
			p.control = nil
		} else {
			p.control.ReloadConf(newConf)
		}
	}

	if newConf == nil && p.registry != nil {
		p.registry.Close()
		p.registry = nil
	}

	if newConf == nil {
		p.metrics = nil
	}

	if closeLogger && p.logger != nil {
		p.logger.Close()
		p.logger = nil
	}
}

func (p *Core) reloadConf(newConf *conf.Conf) error {
	p.closeResources(newConf)

	resetActive := newConf.ActiveCamera != p.conf.ActiveCamera
	p.conf = newConf

	err := p.createResources(false)
	if err != nil {
		return err
	}

	return p.syncCameras(resetActive)
}
