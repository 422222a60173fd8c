package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// minBlockSize is the smallest input block overlap-add splits a signal into.
const minBlockSize = 256

// overlapAdd holds the kernel spectrum and scratch buffers for one kernel.
// It is not safe for concurrent use.
type overlapAdd struct {
	plan      *algofft.Plan[complex128]
	spectrum  []complex128
	kernelLen int
	blockSize int

	block []complex128
	tail  []float64
}

func newOverlapAdd(kernel []float64) (*overlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	blockSize := max(nextPowerOf2(len(kernel)), minBlockSize)
	fftSize := nextPowerOf2(blockSize + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: fft plan of size %d: %w", fftSize, err)
	}

	padded := make([]complex128, fftSize)
	for i, v := range kernel {
		padded[i] = complex(v, 0)
	}

	spectrum := make([]complex128, fftSize)
	if err := plan.Forward(spectrum, padded); err != nil {
		return nil, fmt.Errorf("conv: kernel spectrum: %w", err)
	}

	return &overlapAdd{
		plan:      plan,
		spectrum:  spectrum,
		kernelLen: len(kernel),
		blockSize: blockSize,
		block:     make([]complex128, fftSize),
		tail:      make([]float64, blockSize+len(kernel)-1),
	}, nil
}

// convolve returns the full convolution of input with the kernel.
func (oa *overlapAdd) convolve(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]float64, len(input)+oa.kernelLen-1)

	for start := 0; start < len(input); start += oa.blockSize {
		end := min(start+oa.blockSize, len(input))

		clear(oa.block)
		for i, v := range input[start:end] {
			oa.block[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(oa.block, oa.block); err != nil {
			return nil, fmt.Errorf("conv: forward fft: %w", err)
		}
		for i, k := range oa.spectrum {
			oa.block[i] *= k
		}
		if err := oa.plan.Inverse(oa.block, oa.block); err != nil {
			return nil, fmt.Errorf("conv: inverse fft: %w", err)
		}

		n := end - start + oa.kernelLen - 1
		for i := range n {
			oa.tail[i] = real(oa.block[i])
		}
		vecmath.AddBlockInPlace(out[start:start+n], oa.tail[:n])
	}

	return out, nil
}

// OverlapAdd returns the full convolution of signal with kernel computed
// block-wise in the frequency domain.
func OverlapAdd(signal, kernel []float64) ([]float64, error) {
	oa, err := newOverlapAdd(kernel)
	if err != nil {
		return nil, err
	}
	return oa.convolve(signal)
}
