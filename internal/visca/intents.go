package visca

import (
	"context"
	"fmt"
)

// PanLeft starts panning left.
func (c *Conn) PanLeft(ctx context.Context, speed byte) error {
	return c.send(ctx, PanTilt(true, false, false, false, speed, 0x00))
}

// PanRight starts panning right.
func (c *Conn) PanRight(ctx context.Context, speed byte) error {
	return c.send(ctx, PanTilt(false, true, false, false, speed, 0x00))
}

// TiltUp starts tilting up.
func (c *Conn) TiltUp(ctx context.Context, speed byte) error {
	return c.send(ctx, PanTilt(false, false, true, false, 0x00, speed))
}

// TiltDown starts tilting down.
func (c *Conn) TiltDown(ctx context.Context, speed byte) error {
	return c.send(ctx, PanTilt(false, false, false, true, 0x00, speed))
}

// PanTiltUpLeft starts a diagonal move.
func (c *Conn) PanTiltUpLeft(ctx context.Context, panSpeed, tiltSpeed byte) error {
	return c.send(ctx, PanTilt(true, false, true, false, panSpeed, tiltSpeed))
}

// PanTiltUpRight starts a diagonal move.
func (c *Conn) PanTiltUpRight(ctx context.Context, panSpeed, tiltSpeed byte) error {
	return c.send(ctx, PanTilt(false, true, true, false, panSpeed, tiltSpeed))
}

// PanTiltDownLeft starts a diagonal move.
func (c *Conn) PanTiltDownLeft(ctx context.Context, panSpeed, tiltSpeed byte) error {
	return c.send(ctx, PanTilt(true, false, false, true, panSpeed, tiltSpeed))
}

// PanTiltDownRight starts a diagonal move.
func (c *Conn) PanTiltDownRight(ctx context.Context, panSpeed, tiltSpeed byte) error {
	return c.send(ctx, PanTilt(false, true, false, true, panSpeed, tiltSpeed))
}

// ZoomIn starts zooming in.
func (c *Conn) ZoomIn(ctx context.Context, speed byte) error {
	return c.send(ctx, Zoom(true, false, speed))
}

// ZoomOut starts zooming out.
func (c *Conn) ZoomOut(ctx context.Context, speed byte) error {
	return c.send(ctx, Zoom(false, true, speed))
}

// Stop stops pan and tilt.
func (c *Conn) Stop(ctx context.Context) error {
	return c.send(ctx, Stop())
}

// Home moves to the home position.
func (c *Conn) Home(ctx context.Context) error {
	return c.send(ctx, Home())
}

// ZoomStop stops zooming.
func (c *Conn) ZoomStop(ctx context.Context) error {
	return c.send(ctx, ZoomStop())
}

func (c *Conn) FocusNear(ctx context.Context) error {
	return c.send(ctx, Focus(FocusNear))
}

func (c *Conn) FocusFar(ctx context.Context) error {
	return c.send(ctx, Focus(FocusFar))
}

func (c *Conn) FocusStop(ctx context.Context) error {
	return c.send(ctx, Focus(FocusStop))
}

func (c *Conn) FocusAuto(ctx context.Context) error {
	return c.send(ctx, Focus(FocusAuto))
}

func (c *Conn) FocusManual(ctx context.Context) error {
	return c.send(ctx, Focus(FocusManual))
}

// FocusOnePush triggers a single auto focus.
func (c *Conn) FocusOnePush(ctx context.Context) error {
	return c.send(ctx, Focus(FocusOnePush))
}

func (c *Conn) WhiteBalanceAuto(ctx context.Context) error {
	return c.send(ctx, WhiteBalance(WhiteBalanceAuto))
}

func (c *Conn) WhiteBalanceIndoor(ctx context.Context) error {
	return c.send(ctx, WhiteBalance(WhiteBalanceIndoor))
}

func (c *Conn) WhiteBalanceOutdoor(ctx context.Context) error {
	return c.send(ctx, WhiteBalance(WhiteBalanceOutdoor))
}

func (c *Conn) WhiteBalanceOnePush(ctx context.Context) error {
	return c.send(ctx, WhiteBalance(WhiteBalanceOnePush))
}

func (c *Conn) WhiteBalanceATW(ctx context.Context) error {
	return c.send(ctx, WhiteBalance(WhiteBalanceATW))
}

// WhiteBalanceOnePushTrigger measures white balance once; the camera must be in one-push mode.
func (c *Conn) WhiteBalanceOnePushTrigger(ctx context.Context) error {
	return c.send(ctx, WhiteBalance(WhiteBalanceOnePushTrigger))
}

func (c *Conn) ExposureFullAuto(ctx context.Context) error {
	return c.send(ctx, Exposure(ExposureFullAuto))
}

func (c *Conn) ExposureManual(ctx context.Context) error {
	return c.send(ctx, Exposure(ExposureManual))
}

func (c *Conn) ExposureShutterPriority(ctx context.Context) error {
	return c.send(ctx, Exposure(ExposureShutterPriority))
}

func (c *Conn) ExposureIrisPriority(ctx context.Context) error {
	return c.send(ctx, Exposure(ExposureIrisPriority))
}

// PresetSet stores the current position in a slot.
func (c *Conn) PresetSet(ctx context.Context, slot int) error {
	return c.preset(ctx, PresetSet, slot)
}

// PresetRecall moves to the position stored in a slot.
func (c *Conn) PresetRecall(ctx context.Context, slot int) error {
	return c.preset(ctx, PresetRecall, slot)
}

// PresetReset clears a slot.
func (c *Conn) PresetReset(ctx context.Context, slot int) error {
	return c.preset(ctx, PresetReset, slot)
}

func (c *Conn) preset(ctx context.Context, kind PresetKind, slot int) error {
	if slot < 0 || slot > MaxPresetSlot {
		return fmt.Errorf("%w: %d", ErrInvalidPresetSlot, slot)
	}
	return c.send(ctx, Preset(kind, byte(slot)))
}
