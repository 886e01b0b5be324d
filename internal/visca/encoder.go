// Package visca contains a VISCA-over-IP command encoder and camera connection.
package visca

// Speed ranges and defaults.
const (
	MinPanSpeed     byte = 0x01
	MaxPanSpeed     byte = 0x18
	DefaultPanSpeed byte = 0x0C

	MinZoomSpeed     byte = 0x00
	MaxZoomSpeed     byte = 0x07
	DefaultZoomSpeed byte = 0x04

	// MaxPresetSlot is the highest preset slot exposed to operators.
	MaxPresetSlot = 3

	// DefaultPort is the usual VISCA-over-IP port.
	DefaultPort = 52381
)

const (
	header     byte = 0x81
	terminator byte = 0xFF
)

// pan and tilt direction bytes.
const (
	dirLeftUp    byte = 0x01
	dirRightDown byte = 0x02
	dirStop      byte = 0x03
)

// PanTilt encodes a pan/tilt drive command.
// When both opposite flags are set, right wins over left and down wins over up.
// Speeds are emitted verbatim.
func PanTilt(left, right, up, down bool, panSpeed, tiltSpeed byte) []byte {
	panDir := dirStop
	if left {
		panDir = dirLeftUp
	}
	if right {
		panDir = dirRightDown
	}

	tiltDir := dirStop
	if up {
		tiltDir = dirLeftUp
	}
	if down {
		tiltDir = dirRightDown
	}

	return []byte{header, 0x01, 0x06, 0x01, panSpeed, tiltSpeed, panDir, tiltDir, terminator}
}

// Zoom encodes a variable-speed zoom command. Out wins when both flags are set.
func Zoom(in, out bool, speed byte) []byte {
	var b byte
	if in {
		b = 0x20 | speed
	}
	if out {
		b = 0x30 | speed
	}
	return []byte{header, 0x01, 0x04, 0x07, b, terminator}
}

// Stop encodes a pan/tilt stop.
func Stop() []byte {
	return PanTilt(false, false, false, false, DefaultPanSpeed, DefaultPanSpeed)
}

// Home encodes a move to the home position.
func Home() []byte {
	return []byte{header, 0x01, 0x06, 0x04, terminator}
}

// ZoomStop encodes a zoom stop.
func ZoomStop() []byte {
	return []byte{header, 0x01, 0x04, 0x07, 0x00, terminator}
}

// PresetKind is a memory sub-command.
type PresetKind byte

// memory sub-commands.
const (
	PresetReset  PresetKind = 0x00
	PresetSet    PresetKind = 0x01
	PresetRecall PresetKind = 0x02
)

func (k PresetKind) String() string {
	switch k {
	case PresetReset:
		return "reset"
	case PresetSet:
		return "set"
	case PresetRecall:
		return "recall"
	}
	return "unknown"
}

// Preset encodes a memory command on the given slot.
func Preset(kind PresetKind, slot byte) []byte {
	return []byte{header, 0x01, 0x04, 0x3F, byte(kind), slot, terminator}
}

// DecodePreset extracts kind and slot from a packet produced by Preset.
func DecodePreset(packet []byte) (PresetKind, byte, bool) {
	if len(packet) != 7 || packet[0] != header || packet[1] != 0x01 ||
		packet[2] != 0x04 || packet[3] != 0x3F || packet[6] != terminator {
		return 0, 0, false
	}
	return PresetKind(packet[4]), packet[5] & 0x0F, true
}

// FocusMode is a focus operation.
type FocusMode int

// focus operations.
const (
	FocusStop FocusMode = iota
	FocusFar
	FocusNear
	FocusAuto
	FocusManual
	FocusAutoManual
	FocusOnePush
)

// Focus encodes a focus command.
// It returns nil for an unknown mode.
func Focus(mode FocusMode) []byte {
	switch mode {
	case FocusStop:
		return []byte{header, 0x01, 0x04, 0x08, 0x00, terminator}
	case FocusFar:
		return []byte{header, 0x01, 0x04, 0x08, 0x02, terminator}
	case FocusNear:
		return []byte{header, 0x01, 0x04, 0x08, 0x03, terminator}
	case FocusAuto:
		return []byte{header, 0x01, 0x04, 0x38, 0x02, terminator}
	case FocusManual:
		return []byte{header, 0x01, 0x04, 0x38, 0x03, terminator}
	case FocusAutoManual:
		return []byte{header, 0x01, 0x04, 0x38, 0x10, terminator}
	case FocusOnePush:
		return []byte{header, 0x01, 0x04, 0x18, 0x01, terminator}
	}
	return nil
}

// WhiteBalanceMode is a white balance mode.
type WhiteBalanceMode int

// white balance modes.
const (
	WhiteBalanceAuto WhiteBalanceMode = iota
	WhiteBalanceIndoor
	WhiteBalanceOutdoor
	WhiteBalanceOnePush
	WhiteBalanceATW
	WhiteBalanceManual
	WhiteBalanceOnePushTrigger
)

// WhiteBalance encodes a white balance command.
// It returns nil for an unknown mode.
func WhiteBalance(mode WhiteBalanceMode) []byte {
	switch {
	case mode == WhiteBalanceOnePushTrigger:
		return []byte{header, 0x01, 0x04, 0x10, 0x05, terminator}
	case mode < WhiteBalanceAuto || mode > WhiteBalanceManual:
		return nil
	}
	return []byte{header, 0x01, 0x04, 0x35, byte(mode), terminator}
}

// ExposureMode is an auto exposure mode.
type ExposureMode byte

// auto exposure modes.
const (
	ExposureFullAuto        ExposureMode = 0x00
	ExposureManual          ExposureMode = 0x03
	ExposureShutterPriority ExposureMode = 0x0A
	ExposureIrisPriority    ExposureMode = 0x0B
	ExposureBright          ExposureMode = 0x0D
)

// Exposure encodes an auto exposure mode command.
func Exposure(mode ExposureMode) []byte {
	return []byte{header, 0x01, 0x04, 0x39, byte(mode), terminator}
}

// ClampPanSpeed limits a pan or tilt speed to the VISCA range.
func ClampPanSpeed(v int) byte {
	switch {
	case v < int(MinPanSpeed):
		return MinPanSpeed
	case v > int(MaxPanSpeed):
		return MaxPanSpeed
	}
	return byte(v)
}

// ClampZoomSpeed limits a zoom speed to the VISCA range.
func ClampZoomSpeed(v int) byte {
	switch {
	case v < int(MinZoomSpeed):
		return MinZoomSpeed
	case v > int(MaxZoomSpeed):
		return MaxZoomSpeed
	}
	return byte(v)
}
