package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by stores and
// services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Catalog errors
var (
	ErrTopicUnknown      = errors.New("no challenges for topic")
	ErrChallengeNotFound = errors.New("challenge not found")
)

// Training session errors
var (
	ErrSessionNotFound  = errors.New("training session not found")
	ErrSessionNotActive = errors.New("training session is not active")
	ErrSessionConflict  = errors.New("another training session is already active")
)
