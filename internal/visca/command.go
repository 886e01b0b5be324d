package visca

import (
	"fmt"
	"sort"
)

// Kind is the kind of a Command.
type Kind int

// command kinds.
const (
	KindPanTilt Kind = iota + 1
	KindZoom
	KindStop
	KindHome
	KindZoomStop
	KindFocus
	KindWhiteBalance
	KindExposure
	KindPreset
)

// Command is a single control intent.
type Command struct {
	Kind Kind

	// KindPanTilt
	Left, Right, Up, Down bool
	PanSpeed, TiltSpeed   byte

	// KindZoom
	In, Out   bool
	ZoomSpeed byte

	Focus        FocusMode
	WhiteBalance WhiteBalanceMode
	Exposure     ExposureMode

	// KindPreset
	Preset PresetKind
	Slot   byte
}

// Encode returns the wire bytes of the command.
func (c Command) Encode() []byte {
	switch c.Kind {
	case KindPanTilt:
		return PanTilt(c.Left, c.Right, c.Up, c.Down, c.PanSpeed, c.TiltSpeed)
	case KindZoom:
		return Zoom(c.In, c.Out, c.ZoomSpeed)
	case KindStop:
		return Stop()
	case KindHome:
		return Home()
	case KindZoomStop:
		return ZoomStop()
	case KindFocus:
		return Focus(c.Focus)
	case KindWhiteBalance:
		return WhiteBalance(c.WhiteBalance)
	case KindExposure:
		return Exposure(c.Exposure)
	case KindPreset:
		return Preset(c.Preset, c.Slot)
	}
	return nil
}

// Params are the numeric arguments of a textual action.
// Zero speeds select the defaults.
type Params struct {
	Speed     int `json:"speed"`
	TiltSpeed int `json:"tiltSpeed"`
	Slot      int `json:"slot"`
}

func (p Params) panSpeed() byte {
	if p.Speed == 0 {
		return DefaultPanSpeed
	}
	return ClampPanSpeed(p.Speed)
}

func (p Params) tiltSpeed() byte {
	if p.TiltSpeed == 0 {
		return p.panSpeed()
	}
	return ClampPanSpeed(p.TiltSpeed)
}

func (p Params) zoomSpeed() byte {
	if p.Speed == 0 {
		return DefaultZoomSpeed
	}
	return ClampZoomSpeed(p.Speed)
}

func panTilt(left, right, up, down bool) func(Params) (Command, error) {
	return func(p Params) (Command, error) {
		c := Command{Kind: KindPanTilt, Left: left, Right: right, Up: up, Down: down}
		if left || right {
			c.PanSpeed = p.panSpeed()
		}
		if up || down {
			c.TiltSpeed = p.tiltSpeed()
		}
		return c, nil
	}
}

func zoom(in, out bool) func(Params) (Command, error) {
	return func(p Params) (Command, error) {
		return Command{Kind: KindZoom, In: in, Out: out, ZoomSpeed: p.zoomSpeed()}, nil
	}
}

func fixed(c Command) func(Params) (Command, error) {
	return func(Params) (Command, error) { return c, nil }
}

func preset(kind PresetKind) func(Params) (Command, error) {
	return func(p Params) (Command, error) {
		if p.Slot < 0 || p.Slot > MaxPresetSlot {
			return Command{}, fmt.Errorf("%w: %d", ErrInvalidPresetSlot, p.Slot)
		}
		return Command{Kind: KindPreset, Preset: kind, Slot: byte(p.Slot)}, nil
	}
}

var actions = map[string]func(Params) (Command, error){
	"pan-left":         panTilt(true, false, false, false),
	"pan-right":        panTilt(false, true, false, false),
	"tilt-up":          panTilt(false, false, true, false),
	"tilt-down":        panTilt(false, false, false, true),
	"up-left":          panTilt(true, false, true, false),
	"up-right":         panTilt(false, true, true, false),
	"down-left":        panTilt(true, false, false, true),
	"down-right":       panTilt(false, true, false, true),
	"stop":             fixed(Command{Kind: KindStop}),
	"home":             fixed(Command{Kind: KindHome}),
	"zoom-in":          zoom(true, false),
	"zoom-out":         zoom(false, true),
	"zoom-stop":        fixed(Command{Kind: KindZoomStop}),
	"focus-stop":       fixed(Command{Kind: KindFocus, Focus: FocusStop}),
	"focus-far":        fixed(Command{Kind: KindFocus, Focus: FocusFar}),
	"focus-near":       fixed(Command{Kind: KindFocus, Focus: FocusNear}),
	"focus-auto":       fixed(Command{Kind: KindFocus, Focus: FocusAuto}),
	"focus-manual":     fixed(Command{Kind: KindFocus, Focus: FocusManual}),
	"focus-one-push":   fixed(Command{Kind: KindFocus, Focus: FocusOnePush}),
	"wb-auto":          fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceAuto}),
	"wb-indoor":        fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceIndoor}),
	"wb-outdoor":       fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceOutdoor}),
	"wb-one-push":      fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceOnePush}),
	"wb-atw":           fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceATW}),
	"wb-manual":        fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceManual}),
	"wb-trigger":       fixed(Command{Kind: KindWhiteBalance, WhiteBalance: WhiteBalanceOnePushTrigger}),
	"exposure-auto":    fixed(Command{Kind: KindExposure, Exposure: ExposureFullAuto}),
	"exposure-manual":  fixed(Command{Kind: KindExposure, Exposure: ExposureManual}),
	"exposure-shutter": fixed(Command{Kind: KindExposure, Exposure: ExposureShutterPriority}),
	"exposure-iris":    fixed(Command{Kind: KindExposure, Exposure: ExposureIrisPriority}),
	"exposure-bright":  fixed(Command{Kind: KindExposure, Exposure: ExposureBright}),
	"preset-set":       preset(PresetSet),
	"preset-recall":    preset(PresetRecall),
	"preset-reset":     preset(PresetReset),
}

// ParseCommand maps a textual action onto a Command.
// Speeds coming from operators are clamped into the VISCA ranges.
func ParseCommand(action string, p Params) (Command, error) {
	fn, ok := actions[action]
	if !ok {
		return Command{}, fmt.Errorf("%w: '%s'", ErrUnknownCommand, action)
	}
	return fn(p)
}

// Actions returns the supported textual actions, sorted.
func Actions() []string {
	ret := make([]string, 0, len(actions))
	for k := range actions {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
