// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sniffDecoder struct {
	magic string
}

func (d sniffDecoder) Decode(io.Reader) (Source, error) { return nil, nil }

func (d sniffDecoder) Sniff(header []byte) bool {
	return len(header) >= len(d.magic) && string(header[:len(d.magic)]) == d.magic
}

type plainDecoder struct{}

func (plainDecoder) Decode(io.Reader) (Source, error) { return nil, nil }

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("wav", sniffDecoder{magic: "RIFF"})
	reg.Register("raw", plainDecoder{})

	if _, ok := reg.Get("wav"); !ok {
		t.Error("Get(wav) ok = false, want true")
	}
	if _, ok := reg.Get("flac"); ok {
		t.Error("Get(flac) ok = true, want false")
	}

	if diff := cmp.Diff([]string{"wav", "raw"}, reg.Formats()); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RegisterReplacesInPlace(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("a", sniffDecoder{magic: "AAAA"})
	reg.Register("b", sniffDecoder{magic: "BBBB"})
	reg.Register("a", sniffDecoder{magic: "CCCC"})

	if diff := cmp.Diff([]string{"a", "b"}, reg.Formats()); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}

	name, _, ok := reg.Detect([]byte("CCCCxxxx"))
	if !ok || name != "a" {
		t.Errorf("Detect(CCCC) = (%q, %v), want (a, true)", name, ok)
	}
	if _, _, ok := reg.Detect([]byte("AAAAxxxx")); ok {
		t.Error("Detect(AAAA) found replaced decoder")
	}
}

func TestRegistry_Detect(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("raw", plainDecoder{})
	reg.Register("broad", sniffDecoder{magic: "ID"})
	reg.Register("narrow", sniffDecoder{magic: "ID3"})

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "first match wins", header: "ID3\x04", want: "broad", ok: true},
		{name: "no match", header: "OggS", ok: false},
		{name: "empty", header: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _, ok := reg.Detect([]byte(tt.header))
			if got != tt.want || ok != tt.ok {
				t.Errorf("Detect(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
			}
		})
	}
}
