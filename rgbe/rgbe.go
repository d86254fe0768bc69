// Package rgbe implements the shared-exponent pixel encoding used by
// Radiance HDR images.
//
// Each pixel is four bytes with the following layout:
//   - 3 mantissa bytes, one per color channel (R, G, B)
//   - 1 shared exponent byte E (bias of 128)
//
// A channel with mantissa m decodes to m * 2^(E-128) / 256; the division
// by 256 normalizes the 8-bit mantissas so that a mantissa of 255 paired
// with the matching exponent reproduces the encoded radiance. An exponent
// byte of 0 encodes exact black regardless of the mantissa bytes.
//
// The format trades precision for range: with one exponent per pixel it
// covers roughly 76 orders of magnitude in four bytes, at about 1% relative
// error on the dominant channel.
package rgbe

import (
	"math"
)

// RGBE is a Radiance shared-exponent pixel: the R, G and B mantissa bytes
// followed by the shared exponent byte.
type RGBE [4]byte

// Constants for the shared-exponent encoding.
const (
	// exponentBias is subtracted from the exponent byte.
	exponentBias = 128
	// mantissaBits is the extra exponent shift that normalizes the
	// 8-bit mantissas into [0, 1).
	mantissaBits = 8

	// maxExponent is the largest exponent FromFloat can represent.
	maxExponent = 127
	// minEncodable is the smallest dominant-channel value FromFloat
	// encodes; anything below becomes Black.
	minEncodable = 1e-32
)

// Black is the canonical exact-black pixel.
var Black = RGBE{}

// FromFloat encodes linear radiance channels into a shared-exponent pixel.
// The exponent is taken from the dominant channel, so the other channels
// lose precision in proportion to how much smaller they are. Channels are
// clamped to non-negative values, and inputs whose dominant channel is
// below minEncodable (or not a number) encode as Black. Values at or above
// 2^127 saturate to the largest representable pixel.
func FromFloat(r, g, b float32) RGBE {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if !(max >= minEncodable) {
		return Black
	}

	frac, exp := math.Frexp(float64(max))
	if exp > maxExponent {
		return RGBE{255, 255, 255, 255}
	}

	// frac*256/max maps the dominant channel onto [128, 256).
	scale := float32(frac * 256 / float64(max))
	return RGBE{
		quantize(r * scale),
		quantize(g * scale),
		quantize(b * scale),
		byte(exp + exponentBias),
	}
}

// quantize truncates a scaled mantissa to a byte. Values outside
// [0, 255] clamp; NaN maps to 0.
func quantize(v float32) byte {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Float decodes p into linear radiance channels.
// An exponent byte of 0 yields exact (0, 0, 0) even when the mantissa
// bytes are nonzero. No clamping is applied; results may be arbitrarily
// large or small within float32 range.
func (p RGBE) Float() (r, g, b float32) {
	if p[3] == 0 {
		return 0, 0, 0
	}
	scale := float32(math.Ldexp(1, int(p[3])-exponentBias-mantissaBits))
	return float32(p[0]) * scale, float32(p[1]) * scale, float32(p[2]) * scale
}

// Float64 decodes p into float64 radiance channels.
func (p RGBE) Float64() (r, g, b float64) {
	fr, fg, fb := p.Float()
	return float64(fr), float64(fg), float64(fb)
}

// IsBlack reports whether p uses the exact-black encoding (exponent 0).
func (p RGBE) IsBlack() bool {
	return p[3] == 0
}
