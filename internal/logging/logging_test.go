// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "info", wantInfo: true, wantWarn: true},
		{level: "", wantInfo: true, wantWarn: true},
		{level: "WARN", wantWarn: true},
		{level: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log, err := New(tt.level, "text", &buf)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			log.Debug("d-msg")
			log.Info("i-msg")
			log.Warn("w-msg")

			out := buf.String()
			if got := strings.Contains(out, "d-msg"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "i-msg"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "w-msg"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New("info", "json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.With("component", "engine").Info("attached", "kind", "decoded")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "attached" || rec["component"] != "engine" || rec["kind"] != "decoded" {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("loud", "text", &bytes.Buffer{}); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("New(loud) error = %v, want ErrUnknownLevel", err)
	}
}
