package breath

import "errors"

var (
	// ErrMissingFlow is returned when the recording has no flow samples.
	ErrMissingFlow = errors.New("breath: missing flow signal")

	// ErrSmoothing wraps every failure of the smoothing stage.
	ErrSmoothing = errors.New("breath: smoothing failed")

	// ErrInvalidSampleRate is returned for a non-finite or non-positive fs.
	ErrInvalidSampleRate = errors.New("breath: sample rate must be finite and > 0")

	// ErrInvalidTable is returned by Table.Validate.
	ErrInvalidTable = errors.New("breath: invalid breath table")
)
