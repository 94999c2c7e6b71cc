package services

import "errors"

// Errors shared across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Bracket lifecycle
	ErrTooFewParticipants = errors.New("not enough checked-in participants for this format")
	ErrAlreadyGenerated   = errors.New("bracket has already been generated")
	ErrInvalidFormat      = errors.New("unknown tournament format")
	ErrConfig             = errors.New("invalid bracket configuration")

	// Match mutations
	ErrInvalidState       = errors.New("operation not valid in the current match state")
	ErrMissingFighters    = errors.New("match does not have both fighters assigned")
	ErrNoResultToUndo     = errors.New("match has no result to undo")
	ErrPlayerNotCheckedIn = errors.New("player is not checked in for this event")
	ErrSamePlayer         = errors.New("a match needs two distinct fighters")
	ErrWeightMismatch     = errors.New("fighters are outside the weight tolerance and in different classes")

	// Optimistic conflicts during propagation
	ErrStaleState = errors.New("match changed concurrently, retry the operation")

	// Entity-specific lookups (more context than the bare ErrNotFound)
	ErrEventNotFound       = errors.New("event not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrBracketNotFound     = errors.New("bracket not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrRoundNotFound       = errors.New("bracket round not found")
	ErrWeightClassNotFound = errors.New("weight class not found")
)
