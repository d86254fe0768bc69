// Package planar converts between the planar and interleaved scanline
// layouts used by Radiance HDR images.
//
// Adaptive run-length compressed scanlines store each component as a
// contiguous plane, one plane per component in R, G, B, E order. Pixel
// access wants the components of one pixel adjacent instead:
//
//	Planes: [R0 R1 R2 | G0 G1 G2 | B0 B1 B2 | E0 E1 E2]
//	Pixels: [R0 G0 B0 E0, R1 G1 B1 E1, R2 G2 B2 E2]
package planar

// components is the number of planes per scanline (R, G, B, E).
const components = 4

// Interleave gathers n-pixel component planes into interleaved pixels.
// planes holds the four planes back to back, n bytes each; pixels
// receives 4*n bytes. Panics if either buffer is too small.
func Interleave(pixels, planes []byte, n int) {
	if len(planes) < components*n {
		panic("planar: plane buffer too small")
	}
	if len(pixels) < components*n {
		panic("planar: pixel buffer too small")
	}
	for c := 0; c < components; c++ {
		plane := planes[c*n : (c+1)*n]
		for i, v := range plane {
			pixels[i*components+c] = v
		}
	}
}

// Split scatters interleaved pixels into n-pixel component planes.
// It is the inverse of Interleave. Panics if either buffer is too small.
func Split(planes, pixels []byte, n int) {
	if len(pixels) < components*n {
		panic("planar: pixel buffer too small")
	}
	if len(planes) < components*n {
		panic("planar: plane buffer too small")
	}
	for c := 0; c < components; c++ {
		plane := planes[c*n : (c+1)*n]
		for i := range plane {
			plane[i] = pixels[i*components+c]
		}
	}
}
