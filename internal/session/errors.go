package session

import "errors"

var (
	// ErrNotActive is returned by Submit when the session has not been
	// started or has been stopped.
	ErrNotActive = errors.New("session: not active")

	// ErrNotYourTurn is returned by Submit when the given speaker is not the
	// active speaker.
	ErrNotYourTurn = errors.New("session: not the active speaker")

	// ErrBusy is returned by Submit while a previous utterance is still being
	// processed.
	ErrBusy = errors.New("session: an utterance is already in flight")

	// ErrSessionBusy is returned by SetLanguage while an utterance is being
	// processed. Language changes mid-utterance would make the pipeline's
	// source and target languages inconsistent.
	ErrSessionBusy = errors.New("session: cannot change language while processing")

	// ErrUnknownLanguage is returned by SetLanguage for a language tag outside
	// the supported catalogue.
	ErrUnknownLanguage = errors.New("session: unknown language")

	// ErrInvalidParticipant is returned for a participant value other than
	// UserA or UserB.
	ErrInvalidParticipant = errors.New("session: invalid participant")

	// ErrEmptyClip is returned by Submit for a clip with no audio data.
	ErrEmptyClip = errors.New("session: audio clip is empty")
)
