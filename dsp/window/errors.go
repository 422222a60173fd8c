package window

import (
	"errors"
	"fmt"
)

// DefaultTruncate is the kernel half width in standard deviations used by
// GaussianSigma when no explicit truncation is given.
const DefaultTruncate = 4.0

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errInvalidSigma     = errors.New("gauss sigma must be finite and > 0")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}
