// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audstudio/internal/audiotest"
)

func readAll(t *testing.T, dec Decoder, data []byte) ([]float32, int, int) {
	t.Helper()

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var out []float32
	buf := make([]float32, 64)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	return out, src.SampleRate(), src.Channels()
}

func TestDecoder_Mono16(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV(8000, 1, []int16{0, 16384, -16384, -32768})
	samples, rate, channels := readAll(t, Decoder{}, data)

	if rate != 8000 || channels != 1 {
		t.Fatalf("format = %d Hz / %d ch, want 8000 Hz / 1 ch", rate, channels)
	}

	want := []float32{0, 0.5, -0.5, -1}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(samples), len(want))
	}
	for i := range want {
		if math.Abs(float64(samples[i]-want[i])) > 1e-6 {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestDecoder_Stereo(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV(44100, 2, []int16{100, -100, 200, -200, 300, -300})
	samples, rate, channels := readAll(t, Decoder{}, data)

	if rate != 44100 || channels != 2 {
		t.Fatalf("format = %d Hz / %d ch, want 44100 Hz / 2 ch", rate, channels)
	}
	if len(samples) != 6 {
		t.Fatalf("got %d samples, want 6", len(samples))
	}
	if samples[0] <= 0 || samples[1] >= 0 {
		t.Errorf("channel order lost: L=%v R=%v", samples[0], samples[1])
	}
}

func TestDecoder_NotWAV(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(audiotest.Garbage()))
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
	}
}

func TestDecoder_FloatCodecRejected(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV(8000, 1, []int16{1, 2, 3, 4})
	binary.LittleEndian.PutUint16(data[20:22], 3) // IEEE float

	_, err := Decoder{}.Decode(bytes.NewReader(data))
	if err == nil {
		t.Fatal("Decode() error = nil, want error for float WAV")
	}
}

func TestDecoder_Sniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{name: "wav", header: audiotest.WAV(8000, 1, nil)[:12], want: true},
		{name: "garbage", header: audiotest.Garbage()[:12], want: false},
		{name: "short", header: []byte("RIFF"), want: false},
		{name: "riff but avi", header: []byte("RIFF\x00\x00\x00\x00AVI "), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := (Decoder{}).Sniff(tt.header); got != tt.want {
				t.Errorf("Sniff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteWAV16_RoundTrip(t *testing.T) {
	t.Parallel()

	in := []int16{0, 1000, -1000, 32767, -32768, 5}
	buf := new(bytes.Buffer)
	if err := WriteWAV16(buf, 16000, 2, in); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}
	if buf.Len() != 44+len(in)*2 {
		t.Fatalf("file size = %d, want %d", buf.Len(), 44+len(in)*2)
	}

	samples, rate, channels := readAll(t, Decoder{}, buf.Bytes())
	if rate != 16000 || channels != 2 {
		t.Fatalf("format = %d Hz / %d ch, want 16000 Hz / 2 ch", rate, channels)
	}
	for i, v := range in {
		if got := int16(samples[i] * 32768); got != v {
			t.Errorf("sample %d = %d, want %d", i, got, v)
		}
	}
}

func TestWriteWAV16_Validation(t *testing.T) {
	t.Parallel()

	if err := WriteWAV16(io.Discard, 8000, 0, nil); !errors.Is(err, ErrNoChannels) {
		t.Errorf("WriteWAV16(channels=0) error = %v, want ErrNoChannels", err)
	}
	if err := WriteWAV16(io.Discard, 8000, 2, []int16{1, 2, 3}); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("WriteWAV16(odd samples) error = %v, want ErrChannelMismatch", err)
	}
}
