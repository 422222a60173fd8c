// Package conv provides the linear convolution used by the smoothing stage.
//
// [Convolve] applies kernels of at most 64 samples directly and switches to
// FFT overlap-add above that. A 90 ms Gaussian at 200 Hz is 145 taps and
// takes the FFT path:
//
//	same, err := conv.ConvolveMode(flow, kernel, conv.ModeSame)
package conv
