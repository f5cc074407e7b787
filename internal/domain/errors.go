package domain

import "errors"

var (
	// ErrUnknownSpecialty is returned when no catalog exists for a specialty id.
	ErrUnknownSpecialty = errors.New("unknown specialty")
	// ErrInvalidTransition is returned when an answer targets a question that is not currently eligible.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSessionNotFound is returned when a triage session has not been started or has expired.
	ErrSessionNotFound = errors.New("triage session not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidCatalog indicates a catalog document failed load-time validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrIncomplete is returned by strict submissions that leave visible questions unanswered.
	ErrIncomplete = errors.New("triage incomplete")
)
