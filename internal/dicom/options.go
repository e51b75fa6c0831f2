package dicom

import (
	"github.com/rs/zerolog"

	"github.com/mrsinham/dicomlens/internal/dicom/pixel"
)

// DefaultMaxStringLength bounds how many bytes of a string value are decoded.
const DefaultMaxStringLength = 256

// DefaultPatternSize is the test pattern edge length used when a dimension is unknown.
const DefaultPatternSize = 512

// Option configures Decode, NewReader and Parse.
type Option func(*options)

type options struct {
	logger          zerolog.Logger
	maxStringLength int
	dictionaryVR    bool

	window        pixel.WindowPolicy
	voi           bool
	patternWidth  int
	patternHeight int
}

func newOptions(opts []Option) options {
	o := options{
		logger:          zerolog.Nop(),
		maxStringLength: DefaultMaxStringLength,
		window:          pixel.DefaultWindow(),
		patternWidth:    DefaultPatternSize,
		patternHeight:   DefaultPatternSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger that receives recovery diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxStringLength bounds decoded string values to n bytes.
func WithMaxStringLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxStringLength = n
		}
	}
}

// WithDictionaryVR makes implicit VR streams look up value representations in
// the data dictionary instead of decoding only the built-in subset.
func WithDictionaryVR() Option {
	return func(o *options) { o.dictionaryVR = true }
}

// WithWindowPolicy replaces the policy Parse uses to normalize pixel samples.
func WithWindowPolicy(p pixel.WindowPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.window = p
		}
	}
}

// WithVOIWindowing makes Parse use the file's own Window Center/Width and
// Rescale Slope/Intercept when present.
func WithVOIWindowing() Option {
	return func(o *options) { o.voi = true }
}

// WithTestPatternSize sets the fallback raster size for unknown dimensions.
func WithTestPatternSize(width, height int) Option {
	return func(o *options) {
		if width > 0 {
			o.patternWidth = width
		}
		if height > 0 {
			o.patternHeight = height
		}
	}
}
