package rgbe

import (
	"math"
	"testing"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		name    string
		pixel   RGBE
		r, g, b float32
	}{
		// 2^(128-128)/256 = 1/256 per mantissa unit
		{"unit exponent", RGBE{255, 0, 255, 128}, 0.99609375, 0, 0.99609375},
		// 2^(129-128)/256 = 1/128, so mantissa 128 decodes to exactly 1
		{"exact one", RGBE{128, 0, 0, 129}, 1, 0, 0},
		// 2^(136-128)/256 = 1, mantissas decode as-is
		{"identity scale", RGBE{1, 1, 1, 136}, 1, 1, 1},
		{"zero pixel", RGBE{0, 0, 0, 0}, 0, 0, 0},
		// exponent 0 is exact black even with nonzero mantissas
		{"black overrides mantissas", RGBE{255, 255, 255, 0}, 0, 0, 0},
		{"max pixel", RGBE{255, 255, 255, 255}, 255 * float32(math.Ldexp(1, 119)), 255 * float32(math.Ldexp(1, 119)), 255 * float32(math.Ldexp(1, 119))},
		// smallest nonzero exponent
		{"tiny", RGBE{255, 0, 0, 1}, 255 * float32(math.Ldexp(1, -135)), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := tt.pixel.Float()
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("Float() = (%v, %v, %v), want (%v, %v, %v)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
		want    RGBE
	}{
		{"one", 1, 1, 1, RGBE{128, 128, 128, 129}},
		{"zero", 0, 0, 0, Black},
		{"powers of two", 0.5, 0.25, 0.125, RGBE{128, 64, 32, 128}},
		{"dominant red", 100, 10, 1, RGBE{200, 20, 2, 135}},
		{"half mantissa step", 0.99609375, 0.99609375, 0.99609375, RGBE{255, 255, 255, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFloat(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("FromFloat(%v, %v, %v) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestFromFloatUnderflow(t *testing.T) {
	// Dominant channel below the encodable range collapses to Black.
	if got := FromFloat(1e-40, 1e-40, 1e-40); got != Black {
		t.Errorf("FromFloat(1e-40, ...) = %v, want Black", got)
	}
	if got := FromFloat(-1, -2, -3); got != Black {
		t.Errorf("FromFloat(negative channels) = %v, want Black", got)
	}
}

func TestFromFloatNaN(t *testing.T) {
	nan := float32(math.NaN())
	if got := FromFloat(nan, nan, nan); got != Black {
		t.Errorf("FromFloat(NaN, NaN, NaN) = %v, want Black", got)
	}
	// NaN in a non-dominant channel quantizes to 0.
	got := FromFloat(1, nan, 0.5)
	if got[1] != 0 {
		t.Errorf("FromFloat(1, NaN, 0.5) = %v, want zero green mantissa", got)
	}
}

func TestFromFloatOverflow(t *testing.T) {
	// 3e38 needs exponent 128, one past the largest encodable.
	got := FromFloat(3e38, 3e38, 3e38)
	if got != (RGBE{255, 255, 255, 255}) {
		t.Errorf("FromFloat(3e38, ...) = %v, want saturated pixel", got)
	}
}

func TestFromFloatClampsNegative(t *testing.T) {
	got := FromFloat(-1, -2, 0.5)
	want := RGBE{0, 0, 128, 128}
	if got != want {
		t.Errorf("FromFloat(-1, -2, 0.5) = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	values := []float32{1e-30, 1e-6, 0.001, 0.18, 0.5, 1, 2, 100, 65504, 1e10, 1e30}

	for _, v := range values {
		p := FromFloat(v, v, v)
		r, g, b := p.Float()
		if r != g || g != b {
			t.Errorf("round trip of gray %v decoded to (%v, %v, %v)", v, r, g, b)
		}
		// The mantissa keeps 8 bits, so the dominant channel holds
		// better than 1% relative error.
		relDiff := math.Abs(float64(r-v)) / float64(v)
		if relDiff > 0.01 {
			t.Errorf("round trip of %v = %v, relative error = %v", v, r, relDiff)
		}
	}
}

func TestRoundTripMixed(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float32
	}{
		{"sunlight", 5000, 4800, 4500},
		{"deep shadow", 0.002, 0.003, 0.004},
		{"saturated blue", 0.05, 0.1, 3.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := FromFloat(tt.r, tt.g, tt.b).Float()
			// Quantization error is bounded by one mantissa step of
			// the dominant channel.
			max := tt.r
			if tt.g > max {
				max = tt.g
			}
			if tt.b > max {
				max = tt.b
			}
			tol := float64(max) / 128
			for _, d := range []float64{float64(r - tt.r), float64(g - tt.g), float64(b - tt.b)} {
				if math.Abs(d) > tol {
					t.Errorf("round trip of (%v, %v, %v) = (%v, %v, %v), error exceeds %v",
						tt.r, tt.g, tt.b, r, g, b, tol)
				}
			}
		})
	}
}

func TestFloat64(t *testing.T) {
	r, g, b := RGBE{128, 64, 32, 129}.Float64()
	if r != 1 || g != 0.5 || b != 0.25 {
		t.Errorf("Float64() = (%v, %v, %v), want (1, 0.5, 0.25)", r, g, b)
	}
}

func TestIsBlack(t *testing.T) {
	tests := []struct {
		name  string
		pixel RGBE
		want  bool
	}{
		{"zero value", RGBE{}, true},
		{"nonzero mantissas", RGBE{10, 20, 30, 0}, true},
		{"unit exponent", RGBE{0, 0, 0, 128}, false},
		{"smallest exponent", RGBE{0, 0, 0, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pixel.IsBlack(); got != tt.want {
				t.Errorf("%v.IsBlack() = %v, want %v", tt.pixel, got, tt.want)
			}
		})
	}
}

func BenchmarkFloat(b *testing.B) {
	pixels := []RGBE{
		{255, 0, 255, 128},
		{128, 128, 128, 129},
		{0, 0, 0, 0},
		{200, 20, 2, 135},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range pixels {
			_, _, _ = p.Float()
		}
	}
}

func BenchmarkFromFloat(b *testing.B) {
	values := [][3]float32{
		{1, 1, 1},
		{100, 10, 1},
		{0, 0, 0},
		{0.18, 0.18, 0.18},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range values {
			_ = FromFloat(v[0], v[1], v[2])
		}
	}
}
