// Package conf contains the configuration.
package conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ctenhank/viscactl/internal/logger"
)

// Conf is a configuration.
type Conf struct {
	// General
	LogLevel        LogLevel        `json:"logLevel" yaml:"logLevel"`
	LogDestinations LogDestinations `json:"logDestinations" yaml:"logDestinations"`
	LogFile         string          `json:"logFile" yaml:"logFile"`

	// API
	API            bool           `json:"api" yaml:"api"`
	APIAddress     string         `json:"apiAddress" yaml:"apiAddress"`
	APIReadTimeout StringDuration `json:"apiReadTimeout" yaml:"apiReadTimeout"`
	APIAllowOrigin string         `json:"apiAllowOrigin" yaml:"apiAllowOrigin"`
	APIUsers       []Credential   `json:"apiUsers" yaml:"apiUsers"`

	// Metrics
	Metrics bool `json:"metrics" yaml:"metrics"`

	// Cameras
	ActiveCamera string    `json:"activeCamera" yaml:"activeCamera"`
	Cameras      []*Camera `json:"cameras" yaml:"cameras"`
}

func (conf *Conf) setDefaults() {
	conf.LogLevel = LogLevel(logger.Info)
	conf.LogDestinations = LogDestinations{logger.DestinationStdout}
	conf.LogFile = "viscactl.log"
	conf.API = true
	conf.APIAddress = ":9997"
	conf.APIReadTimeout = StringDuration(10 * time.Second)
	conf.APIAllowOrigin = "*"
	conf.Metrics = true
}

// Load loads a Conf.
// When fpath is empty, the first existing file of defaultConfPaths is used;
// when none exists, the default configuration is returned.
func Load(fpath string, defaultConfPaths []string) (*Conf, string, error) {
	conf := &Conf{}

	fpath, err := conf.loadFromFile(fpath, defaultConfPaths)
	if err != nil {
		return nil, "", err
	}

	err = conf.Validate()
	if err != nil {
		return nil, "", err
	}

	return conf, fpath, nil
}

func (conf *Conf) loadFromFile(fpath string, defaultConfPaths []string) (string, error) {
	if fpath == "" {
		fpath = firstThatExists(defaultConfPaths)

		// when the configuration file is not explicitly set,
		// it is optional.
		if fpath == "" {
			conf.setDefaults()
			return "", nil
		}
	}

	byts, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}

	err = conf.unmarshalYAML(byts)
	if err != nil {
		return "", err
	}

	return fpath, nil
}

// unmarshalYAML decodes a YAML document on top of the defaults.
func (conf *Conf) unmarshalYAML(byts []byte) error {
	conf.setDefaults()

	err := yaml.UnmarshalStrict(byts, conf)
	if err != nil {
		return fmt.Errorf("unable to parse configuration: %w", err)
	}

	return nil
}

// Clone clones the configuration.
func (conf Conf) Clone() *Conf {
	dest := conf
	dest.LogDestinations = append(LogDestinations(nil), conf.LogDestinations...)
	dest.APIUsers = append([]Credential(nil), conf.APIUsers...)
	dest.Cameras = make([]*Camera, len(conf.Cameras))
	for i, c := range conf.Cameras {
		cc := *c
		dest.Cameras[i] = &cc
	}
	return &dest
}

// Validate checks the configuration for errors and fills in defaults.
func (conf *Conf) Validate() error {
	if conf.LogDestinations.contains(logger.DestinationFile) && conf.LogFile == "" {
		return fmt.Errorf("'logFile' is required when 'file' is a log destination")
	}

	if conf.API && conf.APIAddress == "" {
		return fmt.Errorf("'apiAddress' is required when the API is enabled")
	}

	for _, u := range conf.APIUsers {
		err := u.validate()
		if err != nil {
			return err
		}
	}

	names := make(map[string]struct{})

	for _, cconf := range conf.Cameras {
		if cconf == nil {
			return fmt.Errorf("empty camera entry")
		}

		cconf.setDefaults()

		err := cconf.validate()
		if err != nil {
			return err
		}

		if _, ok := names[cconf.Name]; ok {
			return fmt.Errorf("camera '%s' is configured twice", cconf.Name)
		}
		names[cconf.Name] = struct{}{}
	}

	if conf.ActiveCamera != "" {
		if _, ok := names[conf.ActiveCamera]; !ok {
			return fmt.Errorf("'activeCamera' refers to unknown camera '%s'", conf.ActiveCamera)
		}
	} else if len(conf.Cameras) != 0 {
		conf.ActiveCamera = conf.Cameras[0].Name
	}

	return nil
}

// Camera returns the configuration of a camera.
func (conf *Conf) Camera(name string) (*Camera, bool) {
	for _, c := range conf.Cameras {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func firstThatExists(paths []string) string {
	for _, pa := range paths {
		_, err := os.Stat(pa)
		if err == nil {
			return pa
		}
	}
	return ""
}
