package pixel

import "math"

// DefaultMaxSamples bounds the samples inspected by SampledMinMax.
const DefaultMaxSamples = 10000

// WindowPolicy chooses the display window for a frame.
type WindowPolicy interface {
	Window(s Samples) Window
}

// DefaultWindow returns the policy used when none is configured.
func DefaultWindow() WindowPolicy {
	return SampledMinMax{MaxSamples: DefaultMaxSamples}
}

// SampledMinMax stretches the range between the smallest and largest of up
// to MaxSamples evenly strided samples. It ignores any window stored in the
// file.
type SampledMinMax struct {
	MaxSamples int
}

// Window returns the min/max range of the sampled values.
func (p SampledMinMax) Window(s Samples) Window {
	n := s.Len()
	if n == 0 {
		return Window{}
	}
	limit := p.MaxSamples
	if limit <= 0 {
		limit = DefaultMaxSamples
	}
	count := min(limit, n)
	stride := float64(n) / float64(count)

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < count; i++ {
		v := s.At(int(math.Floor(float64(i) * stride)))
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return Window{Low: lo, High: hi}
}

// VOI applies a DICOM window center/width after the modality rescale.
type VOI struct {
	Center    float64
	Width     float64
	Slope     float64
	Intercept float64
}

// Window converts center/width to a linear range; the samples are not read.
func (p VOI) Window(Samples) Window {
	width := math.Max(p.Width, 1)
	low := p.Center - 0.5 - (width-1)/2
	return Window{
		Low:       low,
		High:      low + width - 1,
		Slope:     p.Slope,
		Intercept: p.Intercept,
	}
}
