package conf

import (
	"fmt"
	"net"
	"regexp"

	"github.com/ctenhank/viscactl/internal/visca"
)

var reCameraName = regexp.MustCompile(`^[0-9a-zA-Z_\-\.~]+$`)

func isValidCameraName(name string) error {
	if name == "" {
		return fmt.Errorf("cannot be empty")
	}

	if !reCameraName.MatchString(name) {
		return fmt.Errorf("can contain only alphanumeric characters, underscore, dot, tilde or minus")
	}

	return nil
}

// Camera is a camera configuration.
type Camera struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`

	// operator speeds, in the VISCA ranges
	PanSpeed  int `json:"panSpeed" yaml:"panSpeed"`
	TiltSpeed int `json:"tiltSpeed" yaml:"tiltSpeed"`
	ZoomSpeed int `json:"zoomSpeed" yaml:"zoomSpeed"`
}

func (cconf *Camera) setDefaults() {
	if cconf.Port == 0 {
		cconf.Port = visca.DefaultPort
	}
	if cconf.PanSpeed == 0 {
		cconf.PanSpeed = int(visca.DefaultPanSpeed)
	}
	if cconf.TiltSpeed == 0 {
		cconf.TiltSpeed = cconf.PanSpeed
	}
	if cconf.ZoomSpeed == 0 {
		cconf.ZoomSpeed = int(visca.DefaultZoomSpeed)
	}
}

func (cconf *Camera) validate() error {
	err := isValidCameraName(cconf.Name)
	if err != nil {
		return fmt.Errorf("invalid camera name: %w (%s)", err, cconf.Name)
	}

	if net.ParseIP(cconf.Address) == nil {
		return fmt.Errorf("camera '%s': '%s' is not a valid IP address", cconf.Name, cconf.Address)
	}

	if cconf.Port < 1 || cconf.Port > 65535 {
		return fmt.Errorf("camera '%s': invalid port %d", cconf.Name, cconf.Port)
	}

	for _, s := range []struct {
		name string
		v    int
	}{
		{"panSpeed", cconf.PanSpeed},
		{"tiltSpeed", cconf.TiltSpeed},
	} {
		if s.v < int(visca.MinPanSpeed) || s.v > int(visca.MaxPanSpeed) {
			return fmt.Errorf("camera '%s': '%s' must be between %d and %d", cconf.Name, s.name, visca.MinPanSpeed, visca.MaxPanSpeed)
		}
	}

	if cconf.ZoomSpeed < int(visca.MinZoomSpeed) || cconf.ZoomSpeed > int(visca.MaxZoomSpeed) {
		return fmt.Errorf("camera '%s': 'zoomSpeed' must be between %d and %d", cconf.Name, visca.MinZoomSpeed, visca.MaxZoomSpeed)
	}

	return nil
}

// Identity returns the identity of the camera.
func (cconf Camera) Identity() visca.Identity {
	return visca.Identity{
		Name:    cconf.Name,
		Address: cconf.Address,
		Port:    cconf.Port,
	}
}
