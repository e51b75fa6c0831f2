package pixel

import (
	"encoding/binary"
	"errors"
	"testing"
)

func le16(values ...uint16) []byte {
	b := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return b
}

func TestNormalizeConstantSamplesMapToZero(t *testing.T) {
	const w, h = 8, 4
	values := make([]uint16, w*h)
	for i := range values {
		values[i] = 1200
	}

	img, err := Normalize(Samples{Data: le16(values...), Width: w, Height: h, BitsAllocated: 16}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for i := 0; i < w*h; i++ {
		px := img.Pix[4*i : 4*i+4]
		if px[0] != 0 || px[1] != 0 || px[2] != 0 || px[3] != 255 {
			t.Fatalf("pixel %d = %v, want [0 0 0 255]", i, px)
		}
	}
}

func TestNormalizeLinearStretch(t *testing.T) {
	img, err := Normalize(Samples{Data: le16(100, 150, 200, 300), Width: 2, Height: 2, BitsAllocated: 16}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	// range 200: floor((v-100)/200*255)
	want := []uint8{0, 63, 127, 255}
	for i, g := range want {
		px := img.Pix[4*i : 4*i+4]
		if px[0] != g || px[1] != g || px[2] != g || px[3] != 255 {
			t.Errorf("pixel %d = %v, want gray %d", i, px, g)
		}
	}
}

func TestNormalizeSigned16(t *testing.T) {
	neg := uint16(0xFC18) // -1000
	img, err := Normalize(Samples{Data: le16(neg, 0, 1000, 1000), Width: 4, Height: 1, BitsAllocated: 16, Signed: true}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if img.Pix[0] != 0 {
		t.Errorf("min sample = %d, want 0", img.Pix[0])
	}
	if img.Pix[4] != 127 {
		t.Errorf("zero sample = %d, want 127", img.Pix[4])
	}
	if img.Pix[8] != 255 {
		t.Errorf("max sample = %d, want 255", img.Pix[8])
	}
}

func TestNormalizeBigEndian(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x02} // 1, 2 big endian; 256, 512 little endian
	s := Samples{Data: data, Width: 2, Height: 1, BitsAllocated: 16, Order: binary.BigEndian}
	if got := s.At(1); got != 2 {
		t.Errorf("At(1) = %v, want 2", got)
	}
	s.Order = nil
	if got := s.At(1); got != 512 {
		t.Errorf("At(1) little endian = %v, want 512", got)
	}
}

func TestNormalize8Bit(t *testing.T) {
	img, err := Normalize(Samples{Data: []byte{10, 20, 30}, Width: 3, Height: 1, BitsAllocated: 8}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if img.Pix[0] != 0 || img.Pix[8] != 255 {
		t.Errorf("endpoints = %d,%d, want 0,255", img.Pix[0], img.Pix[8])
	}
}

func TestNormalizeShortPayloadLeavesBlack(t *testing.T) {
	img, err := Normalize(Samples{Data: []byte{0, 255}, Width: 2, Height: 2, BitsAllocated: 8}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for i := 2; i < 4; i++ {
		px := img.Pix[4*i : 4*i+4]
		if px[0] != 0 || px[3] != 255 {
			t.Errorf("pixel %d = %v, want opaque black", i, px)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		samples Samples
		wantErr error
	}{
		{"32 bit", Samples{Data: make([]byte, 16), Width: 2, Height: 2, BitsAllocated: 32}, ErrUnsupportedBitDepth},
		{"1 bit", Samples{Data: make([]byte, 1), Width: 2, Height: 2, BitsAllocated: 1}, ErrUnsupportedBitDepth},
		{"zero width", Samples{Data: make([]byte, 4), Width: 0, Height: 2, BitsAllocated: 8}, ErrInvalidDimensions},
		{"negative height", Samples{Data: make([]byte, 4), Width: 2, Height: -1, BitsAllocated: 8}, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.samples, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSampledMinMaxStride(t *testing.T) {
	values := make([]uint16, 40000)
	for i := range values {
		values[i] = 500
	}
	// Only every fourth sample is inspected, so an outlier at an odd index is missed.
	values[1] = 9000
	values[4] = 100

	w := SampledMinMax{MaxSamples: 10000}.Window(Samples{Data: le16(values...), Width: 200, Height: 200, BitsAllocated: 16})
	if w.Low != 100 || w.High != 500 {
		t.Errorf("window = [%v, %v], want [100, 500]", w.Low, w.High)
	}
}

func TestVOIWindow(t *testing.T) {
	p := VOI{Center: 40, Width: 400, Slope: 1, Intercept: -1024}
	w := p.Window(Samples{})

	tests := []struct {
		stored float64
		want   uint8
	}{
		{stored: 0, want: 0},       // -1024 HU, below window
		{stored: 1024 + 40, want: 127},
		{stored: 4000, want: 255},
	}
	for _, tt := range tests {
		if got := w.Map(tt.stored); got != tt.want {
			t.Errorf("Map(%v) = %d, want %d", tt.stored, got, tt.want)
		}
	}
}

func TestWindowMapClamps(t *testing.T) {
	w := Window{Low: 10, High: 20}
	if got := w.Map(-5); got != 0 {
		t.Errorf("Map below window = %d, want 0", got)
	}
	if got := w.Map(50); got != 255 {
		t.Errorf("Map above window = %d, want 255", got)
	}
}
