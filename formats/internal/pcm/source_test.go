// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type fakeReader struct {
	data []int
	off  int
	err  error
}

func (f *fakeReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: 8000, NumChannels: 1}
}

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data, f.data[f.off:])
	f.off += n
	return n, nil
}

func TestSource_SignedScaling(t *testing.T) {
	t.Parallel()

	src := NewSource(&fakeReader{data: []int{0, 16384, -32768}}, 8000, 1, 16, false)
	dst := make([]float32, 3)

	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("ReadSamples() n = %d, want 3", n)
	}

	want := []float32{0, 0.5, -1}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestSource_Unsigned8(t *testing.T) {
	t.Parallel()

	src := NewSource(&fakeReader{data: []int{128, 0, 192}}, 8000, 1, 8, true)
	dst := make([]float32, 3)

	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}

	want := []float32{0, -1, 0.5}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestSource_ShortReadIsEOF(t *testing.T) {
	t.Parallel()

	src := NewSource(&fakeReader{data: []int{1, 2}}, 8000, 1, 16, false)
	dst := make([]float32, 8)

	n, err := src.ReadSamples(dst)
	if n != 2 || err != io.EOF {
		t.Fatalf("ReadSamples() = (%d, %v), want (2, io.EOF)", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || err != io.EOF {
		t.Fatalf("second ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := NewSource(&fakeReader{err: boom}, 8000, 1, 16, false)

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, boom) {
		t.Fatalf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestSeekable(t *testing.T) {
	t.Parallel()

	br := bytes.NewReader([]byte("abc"))
	rs, err := Seekable(br)
	if err != nil {
		t.Fatalf("Seekable() error = %v", err)
	}
	if rs != br {
		t.Error("Seekable() should return a ReadSeeker unchanged")
	}

	rs, err = Seekable(io.MultiReader(strings.NewReader("ab"), strings.NewReader("cd")))
	if err != nil {
		t.Fatalf("Seekable() error = %v", err)
	}
	got, _ := io.ReadAll(rs)
	if string(got) != "abcd" {
		t.Errorf("Seekable() content = %q, want %q", got, "abcd")
	}
}

func TestFullScale(t *testing.T) {
	t.Parallel()

	tests := map[int]float32{8: 128, 16: 32768, 24: 8388608, 32: 2147483648, 12: 32768}
	for depth, want := range tests {
		if got := FullScale(depth); got != want {
			t.Errorf("FullScale(%d) = %v, want %v", depth, got, want)
		}
	}
}
