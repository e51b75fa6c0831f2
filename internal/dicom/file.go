package dicom

import (
	"errors"
	"fmt"
	"image"

	"github.com/mrsinham/dicomlens/internal/dicom/pixel"
)

// ErrNoPixelData is recorded when a file carries no usable pixel payload.
var ErrNoPixelData = errors.New("no pixel data")

// File is the displayable form of one DICOM file.
type File struct {
	Metadata  Metadata
	Raster    *image.RGBA
	Width     int
	Height    int
	Documents []Document
	// TestPattern is set when Raster is the placeholder pattern; Err then
	// holds the reason the pixel data could not be shown.
	TestPattern bool
	Err         error
}

// Parse decodes buf and renders its pixel data. It never returns nil: when
// the pixels cannot be rendered the raster is a test pattern and the decoded
// metadata is kept.
func Parse(buf []byte, opts ...Option) *File {
	o := newOptions(opts)
	ds, err := decode(buf, o)
	f := &File{
		Metadata:  ds.Metadata,
		Width:     ds.Width,
		Height:    ds.Height,
		Documents: ds.Documents,
	}
	if err != nil {
		return f.fallback(o, fmt.Errorf("decode: %w", err))
	}
	if len(ds.PixelData) == 0 {
		return f.fallback(o, ErrNoPixelData)
	}
	if ds.Width <= 0 || ds.Height <= 0 {
		return f.fallback(o, fmt.Errorf("%w: %dx%d", pixel.ErrInvalidDimensions, ds.Width, ds.Height))
	}

	bits, ok := ds.Metadata.Int(KeyBitsAllocated)
	if !ok {
		bits = 16
	}
	rep, _ := ds.Metadata.Int(KeyPixelRepresentation)
	samples := pixel.Samples{
		Data:          ds.PixelData,
		Width:         ds.Width,
		Height:        ds.Height,
		BitsAllocated: int(bits),
		Signed:        rep == 1,
		Order:         ds.Syntax.Order,
	}

	img, err := pixel.Normalize(samples, o.windowFor(ds.Metadata))
	if err != nil {
		o.logger.Debug().Err(err).Msg("rendering test pattern")
		return f.fallback(o, fmt.Errorf("normalize pixels: %w", err))
	}
	f.Raster = img
	return f
}

func (f *File) fallback(o options, err error) *File {
	if f.Width <= 0 {
		f.Width = o.patternWidth
	}
	if f.Height <= 0 {
		f.Height = o.patternHeight
	}
	f.Raster = pixel.TestPattern(f.Width, f.Height)
	f.TestPattern = true
	f.Err = err
	return f
}

func (o options) windowFor(md Metadata) pixel.WindowPolicy {
	if o.voi {
		if p, ok := VOIWindow(md); ok {
			return p
		}
	}
	return o.window
}

// VOIWindow builds a VOI window policy from the Window Center/Width and
// Rescale Slope/Intercept of md. It reports false without a usable window.
func VOIWindow(md Metadata) (pixel.VOI, bool) {
	center, ok := md.Float(TagWindowCenter.Key())
	if !ok {
		return pixel.VOI{}, false
	}
	width, ok := md.Float(TagWindowWidth.Key())
	if !ok || width <= 0 {
		return pixel.VOI{}, false
	}
	slope, ok := md.Float(TagRescaleSlope.Key())
	if !ok {
		slope = 1
	}
	intercept, _ := md.Float(TagRescaleIntercept.Key())
	return pixel.VOI{Center: center, Width: width, Slope: slope, Intercept: intercept}, true
}
