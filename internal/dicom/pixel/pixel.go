// Package pixel turns stored DICOM pixel samples into displayable rasters.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

var (
	ErrUnsupportedBitDepth = errors.New("unsupported bits allocated")
	ErrInvalidDimensions   = errors.New("invalid raster dimensions")
)

// Samples describes one frame of stored grayscale pixel data.
type Samples struct {
	Data          []byte
	Width         int
	Height        int
	BitsAllocated int
	Signed        bool
	// Order is the byte order of 16-bit samples; nil means little endian.
	Order binary.ByteOrder
}

// Len returns the number of whole samples held in Data.
func (s Samples) Len() int {
	switch s.BitsAllocated {
	case 8:
		return len(s.Data)
	case 16:
		return len(s.Data) / 2
	}
	return 0
}

// At returns sample i as a number.
func (s Samples) At(i int) float64 {
	if s.BitsAllocated == 8 {
		if s.Signed {
			return float64(int8(s.Data[i]))
		}
		return float64(s.Data[i])
	}
	order := s.Order
	if order == nil {
		order = binary.LittleEndian
	}
	v := order.Uint16(s.Data[2*i:])
	if s.Signed {
		return float64(int16(v))
	}
	return float64(v)
}

func (s Samples) validate() error {
	if s.BitsAllocated != 8 && s.BitsAllocated != 16 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, s.BitsAllocated)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, s.Width, s.Height)
	}
	return nil
}

// Normalize maps samples onto an 8-bit grayscale RGBA raster using policy, or
// the sampled min/max stretch when policy is nil. Samples are laid out row
// major; raster pixels without a sample stay opaque black.
func Normalize(s Samples, policy WindowPolicy) (*image.RGBA, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		policy = DefaultWindow()
	}

	w := policy.Window(s)
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	n := min(s.Width*s.Height, s.Len())
	for i := 0; i < n; i++ {
		g := w.Map(s.At(i))
		img.SetRGBA(i%s.Width, i/s.Width, color.RGBA{R: g, G: g, B: g, A: 255})
	}
	return img, nil
}

// Window is a linear mapping from stored values to display intensities.
type Window struct {
	Low  float64
	High float64
	// Slope and Intercept convert stored values before windowing. A zero
	// Slope is treated as 1.
	Slope     float64
	Intercept float64
}

// Map returns the display intensity of stored value v.
func (w Window) Map(v float64) uint8 {
	slope := w.Slope
	if slope == 0 {
		slope = 1
	}
	v = v*slope + w.Intercept

	span := w.High - w.Low
	if span < 1 {
		span = 1
	}
	out := math.Floor((v - w.Low) / span * 255)
	switch {
	case out < 0:
		return 0
	case out > 255:
		return 255
	}
	return uint8(out)
}
