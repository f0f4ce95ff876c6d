// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audstudio"
	"github.com/ik5/audstudio/internal/audiotest"
	"github.com/ik5/audstudio/media"
)

func TestMediaOpener(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	root := filepath.Join(parent, "media")
	if err := os.Mkdir(root, 0o700); err != nil {
		t.Fatal(err)
	}
	tone := audiotest.ToneWAV(8000, 2, 0.25, 330)
	if err := os.WriteFile(filepath.Join(root, "tone.wav"), tone, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "outside.wav"), tone, 0o600); err != nil {
		t.Fatal(err)
	}

	lib, err := media.NewLibrary(root, audstudio.NewDecodeFunc(audstudio.NewRegistry()), media.LibraryOptions{SampleRate: 8000})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	open := mediaOpener(lib)

	first, err := open(context.Background(), "tone.wav")
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	second, err := open(context.Background(), "./tone.wav")
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	if first != second {
		t.Error("same file opened twice produced different handles")
	}
	if first.Duration() != 0.25 {
		t.Errorf("Duration() = %v, want 0.25", first.Duration())
	}

	h, err := open(context.Background(), "../outside.wav")
	if !errors.Is(err, media.ErrOutsideRoot) {
		t.Errorf("escaping path error = %v, want ErrOutsideRoot", err)
	}
	if h != nil {
		t.Errorf("escaping path returned handle %v", h)
	}
	if _, err := open(context.Background(), "missing.wav"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}
