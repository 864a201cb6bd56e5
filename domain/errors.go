package domain

import "errors"

var (
	ErrUnknownUser           = errors.New("unknown user")
	ErrUnknownProduct        = errors.New("unknown product")
	ErrUnknownIdentifier     = errors.New("unknown identifier")
	ErrPredictionUnavailable = errors.New("prediction unavailable")
	ErrCandidateScoring      = errors.New("candidate scoring failure")
	ErrNoCandidates          = errors.New("no scoreable candidates")
	ErrCatalogNotReady       = errors.New("catalog not loaded")
)
