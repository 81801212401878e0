package board

import "errors"

var (
	// ErrMalformedFEN is returned when FEN text is structurally broken.
	ErrMalformedFEN = errors.New("malformed FEN")
	// ErrInvalidPosition is returned for well-formed FEN describing an
	// impossible position (two kings, pawns on the back rank, ...).
	ErrInvalidPosition = errors.New("invalid position")
)
