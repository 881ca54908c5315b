package models

import (
	"errors"
)

// Caller-facing failures. Operations wrap these with a description of the
// violated precondition, so match with errors.Is.
var (
	ErrInvalidKeyword      = errors.New("invalid keyword")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrNoKeywordSet        = errors.New("no keyword set")
	ErrNoCategorySet       = errors.New("no category set")
	ErrNoTitlesFound       = errors.New("no titles found")
	ErrInsufficientSamples = errors.New("keyword in category with insufficient number of samples")
	ErrNoAPIKey            = errors.New("no API key set")

	ErrUnknownEngine = errors.New("unknown generation engine")
)
