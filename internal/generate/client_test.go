// SPDX-License-Identifier: EPL-2.0

package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	audio := []byte("RIFF....WAVEfake")
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate-audio" {
			http.Error(w, "wrong route", http.StatusNotFound)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			http.Error(w, "wrong content type "+ct, http.StatusBadRequest)
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPrompt = req.Prompt
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(audio)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	data, err := c.Generate(context.Background(), "  calm piano  ")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if diff := cmp.Diff(audio, data); diff != "" {
		t.Errorf("audio mismatch (-want +got):\n%s", diff)
	}
	if gotPrompt != "calm piano" {
		t.Errorf("prompt sent = %q, want trimmed", gotPrompt)
	}
}

func TestGenerate_EmptyPromptSkipsRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	for _, prompt := range []string{"", "   ", "\n\t"} {
		if _, err := NewClient(srv.URL).Generate(context.Background(), prompt); !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("Generate(%q) error = %v, want ErrEmptyPrompt", prompt, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("backend called %d times, want 0", calls.Load())
	}
}

func TestGenerate_BackendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   BackendError
	}{
		{
			name:   "error with details",
			status: http.StatusBadGateway,
			body:   `{"error":"model loading","details":"retry in 20s"}`,
			want:   BackendError{Status: 502, Message: "model loading", Details: "retry in 20s"},
		},
		{
			name:   "error only",
			status: http.StatusBadRequest,
			body:   `{"error":"prompt rejected"}`,
			want:   BackendError{Status: 400, Message: "prompt rejected"},
		},
		{
			name:   "non JSON body",
			status: http.StatusInternalServerError,
			body:   "boom",
			want:   BackendError{Status: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Generate(context.Background(), "drums")
			if !errors.Is(err, ErrBackend) {
				t.Fatalf("error = %v, want ErrBackend", err)
			}
			var berr *BackendError
			if !errors.As(err, &berr) {
				t.Fatalf("error %T is not *BackendError", err)
			}
			if diff := cmp.Diff(tt.want, *berr); diff != "" {
				t.Errorf("BackendError mismatch (-want +got):\n%s", diff)
			}
			if tt.want.Message == "" && !strings.Contains(err.Error(), "unknown error from backend") {
				t.Errorf("message = %q", err.Error())
			}
		})
	}
}

func TestGenerate_BodyLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "empty", body: "", want: ErrEmptyAudio},
		{name: "too large", body: strings.Repeat("x", 33), want: ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, WithMaxBytes(32)).Generate(context.Background(), "bass")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewClient(srv.URL).Generate(ctx, "strings"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}
