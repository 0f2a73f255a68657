// Package types defines the shared types used across all voxbridge packages.
//
// These types form the lingua franca between providers, the conversation
// session, and the presentation layer. They are intentionally minimal; each
// package defines its own domain types, but cross-cutting data structures live
// here to avoid circular imports.
package types

import "time"

// Participant identifies one of the two people sharing the device.
// The conversation is strictly two-party; there is no participant registry.
type Participant string

const (
	// UserA is the participant who holds the first turn of every session.
	UserA Participant = "userA"

	// UserB is the second participant.
	UserB Participant = "userB"
)

// IsValid reports whether p is one of the two recognised participants.
func (p Participant) IsValid() bool {
	return p == UserA || p == UserB
}

// Other returns the opposite participant. Calling Other on an invalid
// Participant returns UserA.
func (p Participant) Other() Participant {
	if p == UserA {
		return UserB
	}
	return UserA
}

// LanguageProfile describes what one participant speaks and wants to hear.
type LanguageProfile struct {
	// Speaks is the language code the participant talks in (e.g., "en").
	// Used as the transcription hint for their utterances.
	Speaks string

	// Hears is the language code translations for this participant are
	// rendered in.
	Hears string

	// VoiceID optionally selects a synthesis voice used when speaking
	// translations to this participant. Empty means the provider default.
	VoiceID string
}

// AudioClip is a single recorded utterance handed to the pipeline.
// The session treats the payload as opaque; only providers interpret it.
type AudioClip struct {
	// Data is the encoded audio payload.
	Data []byte

	// MIMEType describes the encoding (e.g., "audio/wav", "audio/mp4").
	MIMEType string

	// SampleRate in Hz, when known. Zero means unspecified.
	SampleRate int

	// Duration of the recording, when known.
	Duration time.Duration
}

// Speech is a synthesised spoken rendition of a translated utterance.
type Speech struct {
	// Audio is the encoded audio payload produced by the synthesizer.
	Audio []byte

	// MIMEType describes the audio encoding (e.g., "audio/mpeg", "audio/pcm").
	MIMEType string

	// Duration is the playback length, when the provider reports it.
	Duration time.Duration
}

// UtteranceStatus tracks an utterance through the pipeline.
// Transitions are strictly forward: Pending → Transcribing → Translating →
// Complete, with Failed reachable from either processing state.
type UtteranceStatus string

const (
	StatusPending      UtteranceStatus = "pending"
	StatusTranscribing UtteranceStatus = "transcribing"
	StatusTranslating  UtteranceStatus = "translating"
	StatusComplete     UtteranceStatus = "complete"
	StatusFailed       UtteranceStatus = "failed"
)

// Terminal reports whether s is a final status that will not change again.
func (s UtteranceStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// FailReason classifies why an utterance ended in StatusFailed.
type FailReason string

const (
	// FailTranscription: the transcribe stage returned an error.
	FailTranscription FailReason = "transcription"

	// FailTranslation: the translate stage returned an error. OriginalText
	// obtained before the failure is retained.
	FailTranslation FailReason = "translation"

	// FailTimeout: a stage exceeded its configured deadline.
	FailTimeout FailReason = "timeout"

	// FailCancelled: the session was stopped while the stage was in flight.
	FailCancelled FailReason = "cancelled"
)

// Utterance is one spoken turn and its transcription/translation result.
//
// TargetLanguage is fixed when the utterance is created; it captures the
// other participant's Hears language at submission time and is never
// retroactively altered by later profile edits.
type Utterance struct {
	// ID uniquely identifies this utterance within the session.
	ID string

	// Speaker is the participant who produced the audio.
	Speaker Participant

	// OriginalLanguage is the speaker's Speaks code at submission time.
	OriginalLanguage string

	// TargetLanguage is the listener's Hears code at submission time.
	TargetLanguage string

	// OriginalText is the transcription result. Empty until the transcribe
	// stage completes; retained even when a later stage fails.
	OriginalText string

	// TranslatedText is the translation result. Empty until the translate
	// stage completes.
	TranslatedText string

	// Confidence is the transcription confidence (0.0–1.0) when the provider
	// reports one.
	Confidence float64

	// Status is the current pipeline state of this utterance.
	Status UtteranceStatus

	// FailReason is set only when Status is StatusFailed.
	FailReason FailReason

	// Speech holds the best-effort synthesised audio for the translation.
	// Nil when synthesis is disabled, still pending, or failed; captions
	// remain authoritative regardless.
	Speech *Speech

	// CreatedAt is when the utterance was submitted.
	CreatedAt time.Time
}
