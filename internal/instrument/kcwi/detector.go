// Package kcwi describes the Keck Cosmic Web Imager: its frames, blue and
// red CCD settings, and the optical configuration with its calibration
// recipe.
package kcwi

import (
	"time"

	"github.com/litescript/odl/internal/config"
	"github.com/litescript/odl/internal/offset"
	"github.com/litescript/odl/internal/units"
)

// Frames.
var (
	BlueDetector = offset.NewInstrumentFrame("Blue Detector", units.ArcsecPerPixel(0.1798), 0)
	SmallSlicer  = offset.NewInstrumentFrame("SmallSlicer", units.ArcsecPerPixel(0.35), 0)
	MediumSlicer = offset.NewInstrumentFrame("MediumSlicer", units.ArcsecPerPixel(0.70), 0)
	LargeSlicer  = offset.NewInstrumentFrame("LargeSlicer", units.ArcsecPerPixel(1.35), 0)
)

// SlicerFrame returns the frame for a slicer name, or nil if unknown.
func SlicerFrame(slicer string) *offset.InstrumentFrame {
	switch slicer {
	case "small":
		return SmallSlicer
	case "medium":
		return MediumSlicer
	case "large":
		return LargeSlicer
	}
	return nil
}

// DetectorOption adjusts a KCWI detector config.
type DetectorOption func(*config.VisibleDetectorConfig)

// WithReadoutMode sets the ccdmode keyword.
func WithReadoutMode(mode int) DetectorOption {
	return func(c *config.VisibleDetectorConfig) { c.ReadoutMode = mode }
}

// WithAmpMode sets the amplifier mode.
func WithAmpMode(mode int) DetectorOption {
	return func(c *config.VisibleDetectorConfig) { c.AmpMode = mode }
}

// WithDark closes the shutter.
func WithDark() DetectorOption {
	return func(c *config.VisibleDetectorConfig) { c.Dark = true }
}

// WithBinning sets the binning, "1x1" or "2x2".
func WithBinning(binning string) DetectorOption {
	return func(c *config.VisibleDetectorConfig) { c.Binning = binning }
}

// WithWindow sets a readout window.
func WithWindow(window string) DetectorOption {
	return func(c *config.VisibleDetectorConfig) { c.Window = &window }
}

// WithGain sets the gain.
func WithGain(gain float64) DetectorOption {
	return func(c *config.VisibleDetectorConfig) { c.Gain = gain }
}

func newVisible(instrument string, exptime time.Duration, opts []DetectorOption) config.VisibleDetectorConfig {
	c := config.VisibleDetectorConfig{
		InstrumentName: instrument,
		ExposureTime:   exptime,
		ReadoutMode:    1,
		AmpMode:        9,
		Binning:        "1x1",
		Gain:           10,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// BlueDetectorConfig is the KCWI blue CCD. ReadoutMode maps to ccdmodeb.
type BlueDetectorConfig struct {
	config.VisibleDetectorConfig
}

// NewBlueDetectorConfig creates a blue detector config with the default
// readout mode 1, amp mode 9, 1x1 binning and gain 10.
func NewBlueDetectorConfig(exptime time.Duration, opts ...DetectorOption) *BlueDetectorConfig {
	return &BlueDetectorConfig{newVisible("KCWIblue", exptime, opts)}
}

// CloneDetector implements config.DetectorConfig.
func (c *BlueDetectorConfig) CloneDetector() config.DetectorConfig {
	return &BlueDetectorConfig{*c.VisibleDetectorConfig.Clone()}
}

// RedDetectorConfig is the KCWI red CCD. ReadoutMode maps to ccdmoder.
type RedDetectorConfig struct {
	config.VisibleDetectorConfig
}

// NewRedDetectorConfig creates a red detector config with the same defaults
// as the blue side.
func NewRedDetectorConfig(exptime time.Duration, opts ...DetectorOption) *RedDetectorConfig {
	return &RedDetectorConfig{newVisible("KCWIred", exptime, opts)}
}

// CloneDetector implements config.DetectorConfig.
func (c *RedDetectorConfig) CloneDetector() config.DetectorConfig {
	return &RedDetectorConfig{*c.VisibleDetectorConfig.Clone()}
}
