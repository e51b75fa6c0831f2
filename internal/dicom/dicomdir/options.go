package dicomdir

import (
	"github.com/rs/zerolog"

	"github.com/mrsinham/dicomlens/internal/dicom"
)

// DefaultRecordWindow bounds how far an undefined-length record is read
// before its item delimiter is assumed missing.
const DefaultRecordWindow = 512

// Option configures Build.
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	recordWindow int
	decoder      []dicom.Option
}

func newOptions(opts []Option) options {
	o := options{
		logger:       zerolog.Nop(),
		recordWindow: DefaultRecordWindow,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// decoderOptions returns the options for the element reader. Directory
// records are read with dictionary VRs so implicit VR file sets decode too.
func (o options) decoderOptions() []dicom.Option {
	out := []dicom.Option{dicom.WithLogger(o.logger), dicom.WithDictionaryVR()}
	return append(out, o.decoder...)
}

// WithLogger sets the logger for recovery diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRecordWindow sets the read bound for undefined-length records.
func WithRecordWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.recordWindow = n
		}
	}
}

// WithDecoderOptions passes options to the element reader.
func WithDecoderOptions(opts ...dicom.Option) Option {
	return func(o *options) { o.decoder = append(o.decoder, opts...) }
}
