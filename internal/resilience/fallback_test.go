package resilience_test

import (
	"context"
	"errors"
	"testing"

	"github.com/voxbridge-app/voxbridge/internal/resilience"
	"github.com/voxbridge-app/voxbridge/pkg/provider/synthesize"
	synthmock "github.com/voxbridge-app/voxbridge/pkg/provider/synthesize/mock"
	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe"
	stmock "github.com/voxbridge-app/voxbridge/pkg/provider/transcribe/mock"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

func TestTranscriberFailsOverToFallback(t *testing.T) {
	t.Parallel()

	primary := &stmock.Provider{Err: errors.New("server unreachable")}
	fallback := &stmock.Provider{Result: &transcribe.Result{Text: "hello there"}}

	tr := resilience.NewTranscriber(primary, "whisper", resilience.FallbackConfig{})
	tr.AddFallback("whisper-local", fallback)

	clip := types.AudioClip{Data: []byte{0x01}, MIMEType: "audio/wav"}
	res, err := tr.Transcribe(context.Background(), clip, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello there" {
		t.Errorf("text = %q, want fallback's result", res.Text)
	}
	if len(primary.Calls) != 1 || len(fallback.Calls) != 1 {
		t.Errorf("calls = primary %d / fallback %d, want 1 / 1", len(primary.Calls), len(fallback.Calls))
	}
}

func TestTranscriberAllFailed(t *testing.T) {
	t.Parallel()

	primary := &stmock.Provider{Err: errors.New("down")}
	tr := resilience.NewTranscriber(primary, "whisper", resilience.FallbackConfig{})

	clip := types.AudioClip{Data: []byte{0x01}, MIMEType: "audio/wav"}
	if _, err := tr.Transcribe(context.Background(), clip, "en"); !errors.Is(err, resilience.ErrAllFailed) {
		t.Fatalf("got %v, want ErrAllFailed", err)
	}
}

func TestSynthesizerFailsOverToFallback(t *testing.T) {
	t.Parallel()

	primary := &synthmock.Provider{Err: errors.New("quota exceeded")}
	fallback := &synthmock.Provider{Speech: &types.Speech{Audio: []byte{0xAA}, MIMEType: "audio/pcm"}}

	s := resilience.NewSynthesizer(primary, "elevenlabs", resilience.FallbackConfig{})
	s.AddFallback("openai", fallback)

	speech, err := s.Synthesize(context.Background(), synthesize.Request{Text: "مرحبا", Language: "ar"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(speech.Audio) != 1 {
		t.Errorf("audio = %d bytes, want fallback's clip", len(speech.Audio))
	}
	if primary.SynthesizeCount() != 1 || fallback.SynthesizeCount() != 1 {
		t.Errorf("calls = primary %d / fallback %d, want 1 / 1", primary.SynthesizeCount(), fallback.SynthesizeCount())
	}
}

func TestSynthesizerListVoicesUsesFirstHealthy(t *testing.T) {
	t.Parallel()

	primary := &synthmock.Provider{Voices: []synthesize.Voice{{ID: "v1", Name: "Alpha"}}}
	fallback := &synthmock.Provider{Voices: []synthesize.Voice{{ID: "v2", Name: "Beta"}}}

	s := resilience.NewSynthesizer(primary, "elevenlabs", resilience.FallbackConfig{})
	s.AddFallback("openai", fallback)

	voices, err := s.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 1 || voices[0].ID != "v1" {
		t.Errorf("voices = %+v, want primary's catalogue", voices)
	}
}
