// SPDX-License-Identifier: EPL-2.0

package httpapi

import (
	"errors"
	"math"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ik5/audstudio/graph"
	"github.com/ik5/audstudio/internal/generate"
	"github.com/ik5/audstudio/media"
	"github.com/ik5/audstudio/playback"
	"github.com/ik5/audstudio/source"
	"github.com/ik5/audstudio/visual"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StateResponse is the JSON form of a playback.Snapshot. Duration is null
// until known.
type StateResponse struct {
	State       string   `json:"state"`
	IsPlaying   bool     `json:"is_playing"`
	CurrentTime float64  `json:"current_time"`
	Duration    *float64 `json:"duration"`
	Volume      float64  `json:"volume"`
	IsMuted     bool     `json:"is_muted"`
	HasSource   bool     `json:"has_source"`
	Kind        string   `json:"kind,omitempty"`
	SourceID    string   `json:"source_id,omitempty"`
	Resumable   bool     `json:"resumable"`
	Ready       bool     `json:"ready"`
	Warning     string   `json:"warning,omitempty"`
}

func (s *Server) stateResponse() StateResponse {
	snap := s.d.Engine.Snapshot()
	out := StateResponse{
		State:       snap.State.String(),
		IsPlaying:   snap.IsPlaying,
		CurrentTime: snap.CurrentTime,
		Volume:      snap.Volume,
		IsMuted:     snap.IsMuted,
		HasSource:   snap.HasSource,
		Resumable:   snap.Resumable,
		Ready:       s.d.Graph.IsReady(),
	}
	if !math.IsNaN(snap.Duration) && !math.IsInf(snap.Duration, 0) {
		d := snap.Duration
		out.Duration = &d
	}
	if snap.HasSource {
		out.Kind = snap.Kind.String()
		out.SourceID = snap.SourceID.String()
	}
	return out
}

type errorStatus struct {
	err    error
	status int
	code   string
}

// errorTable is checked in order; the first match wins.
var errorTable = []errorStatus{
	{source.ErrEmptyInput, http.StatusBadRequest, "empty_input"},
	{http.ErrMissingFile, http.StatusBadRequest, "bad_request"},
	{generate.ErrEmptyPrompt, http.StatusBadRequest, "empty_prompt"},
	{visual.ErrUnknownRenderer, http.StatusBadRequest, "unknown_renderer"},
	{media.ErrOutsideRoot, http.StatusForbidden, "outside_media_root"},
	{source.ErrInvalidFile, http.StatusUnsupportedMediaType, "invalid_file"},
	{source.ErrDecode, http.StatusUnprocessableEntity, "decode_failed"},
	{source.ErrSuperseded, http.StatusConflict, "superseded"},
	{source.ErrSpent, http.StatusConflict, "source_spent"},
	{graph.ErrNotReady, http.StatusConflict, "not_ready"},
	{generate.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
	{media.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
	{generate.ErrBackend, http.StatusBadGateway, "backend_error"},
	{generate.ErrEmptyAudio, http.StatusBadGateway, "backend_error"},
	{os.ErrNotExist, http.StatusNotFound, "not_found"},
	{playback.ErrClosed, http.StatusServiceUnavailable, "closed"},
	{graph.ErrClosed, http.StatusServiceUnavailable, "closed"},
	{graph.ErrUnsupportedEnvironment, http.StatusServiceUnavailable, "unsupported_environment"},
}

func statusFor(err error) (int, string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, "too_large"
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: msg})
}

func notImplemented(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotImplemented, ErrorResponse{Error: "not_implemented", Message: msg})
}
