package whisperlocal_test

import (
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxbridge-app/voxbridge/pkg/provider/transcribe/whisperlocal"
	"github.com/voxbridge-app/voxbridge/pkg/types"
)

func TestTranscribeSendsMultipartForm(t *testing.T) {
	t.Parallel()

	var gotLanguage, gotModel, gotFilename string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("path = %q, want /inference", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")

		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		gotFilename = hdr.Filename
		gotFile, _ = io.ReadAll(f)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": " Hello world. \n"}`))
	}))
	defer srv.Close()

	p, err := whisperlocal.New(srv.URL, whisperlocal.WithModel("base"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clip := types.AudioClip{Data: []byte{0x01, 0x02, 0x03, 0x04}, MIMEType: "audio/wav"}
	res, err := p.Transcribe(context.Background(), clip, "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if res.Text != "Hello world." {
		t.Errorf("text = %q, want trimmed %q", res.Text, "Hello world.")
	}
	if res.Language != "en" {
		t.Errorf("language = %q, want en", res.Language)
	}
	if gotLanguage != "en" || gotModel != "base" {
		t.Errorf("form fields language=%q model=%q, want en/base", gotLanguage, gotModel)
	}
	if gotFilename != "audio.wav" {
		t.Errorf("filename = %q, want audio.wav", gotFilename)
	}
	// WAV clips are uploaded unchanged.
	if string(gotFile) != string(clip.Data) {
		t.Errorf("uploaded bytes differ from clip data")
	}
}

func TestTranscribeWrapsRawPCMInWAV(t *testing.T) {
	t.Parallel()

	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		gotFile, _ = io.ReadAll(f)
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	p, err := whisperlocal.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pcm := make([]byte, 320)
	clip := types.AudioClip{Data: pcm, MIMEType: "audio/pcm", SampleRate: 16000}
	if _, err := p.Transcribe(context.Background(), clip, ""); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if len(gotFile) != 44+len(pcm) {
		t.Fatalf("upload size = %d, want 44-byte header + %d PCM bytes", len(gotFile), len(pcm))
	}
	if string(gotFile[0:4]) != "RIFF" || string(gotFile[8:12]) != "WAVE" {
		t.Error("upload missing RIFF/WAVE header")
	}
	if rate := binary.LittleEndian.Uint32(gotFile[24:28]); rate != 16000 {
		t.Errorf("sample rate in header = %d, want 16000", rate)
	}
	if size := binary.LittleEndian.Uint32(gotFile[40:44]); int(size) != len(pcm) {
		t.Errorf("data size in header = %d, want %d", size, len(pcm))
	}
}

func TestTranscribeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := whisperlocal.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clip := types.AudioClip{Data: []byte{0x01}, MIMEType: "audio/wav"}
	if _, err := p.Transcribe(context.Background(), clip, "en"); err == nil {
		t.Error("expected error for HTTP 500")
	}
}

func TestNewRequiresServerURL(t *testing.T) {
	t.Parallel()

	if _, err := whisperlocal.New(""); err == nil {
		t.Error("expected error for empty server URL")
	}
}
