package analysis

import "errors"

var (
	// ErrMalformedAnalysis is returned when the model reply holds no usable
	// JSON object.
	ErrMalformedAnalysis = errors.New("malformed analysis response")

	// ErrInvalidArchive is returned when invoice archive bytes are not a zip.
	ErrInvalidArchive = errors.New("invalid invoice archive")
)
