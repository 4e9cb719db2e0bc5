package faults

import "errors"

// Sentinel errors for the faults package
var (
	ErrInvalidGeometry  = errors.New("invalid fault geometry")
	ErrUnknownSection   = errors.New("unknown subsection")
	ErrDuplicateSection = errors.New("duplicate subsection id")
	ErrNonContiguousIDs = errors.New("subsection ids are not contiguous")
)
