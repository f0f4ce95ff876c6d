// SPDX-License-Identifier: EPL-2.0

package httpapi

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ik5/audstudio/playback"
	"github.com/ik5/audstudio/source"
	"github.com/ik5/audstudio/visual"
)

// AttachResponse describes a source once it is ready.
type AttachResponse struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Duration *float64      `json:"duration"`
	State    StateResponse `json:"state"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"audio":  s.d.Graph.State().String(),
	})
}

// interact is the user gesture that lets the output start.
func (s *Server) interact(c *gin.Context) {
	if err := s.d.Graph.ResumeOnInteraction(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.stateResponse())
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.stateResponse())
}

// transport adapts an engine operation. Warnings are answered with 200 and
// the current state.
func (s *Server) transport(op func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := op()
		if err != nil && !playback.IsWarning(err) {
			s.fail(c, err)
			return
		}
		resp := s.stateResponse()
		if err != nil {
			resp.Warning = err.Error()
		}
		c.JSON(http.StatusOK, resp)
	}
}

type seekRequest struct {
	Time *float64 `json:"time" binding:"required"`
}

func (s *Server) seek(c *gin.Context) {
	var req seekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"time\": seconds}")
		return
	}
	if math.IsNaN(*req.Time) {
		badRequest(c, "time is not a number")
		return
	}
	s.transport(func() error { return s.d.Engine.Seek(*req.Time) })(c)
}

type volumeRequest struct {
	Volume *float64 `json:"volume" binding:"required"`
}

func (s *Server) volume(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"volume\": 0..1}")
		return
	}
	s.d.Engine.SetVolume(*req.Volume)
	c.JSON(http.StatusOK, s.stateResponse())
}

func (s *Server) mute(c *gin.Context) {
	s.d.Engine.ToggleMute()
	c.JSON(http.StatusOK, s.stateResponse())
}

// attachUpload accepts a multipart "file" field or the raw request body.
func (s *Server) attachUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.d.MaxUploadBytes)

	data, err := s.readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.attachBytes(c, data)
}

func (s *Server) readUpload(c *gin.Context) ([]byte, error) {
	if c.ContentType() != "multipart/form-data" {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		return data, nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("reading form file: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening form file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading form file: %w", err)
	}
	return data, nil
}

type mediaRequest struct {
	Path string `json:"path" binding:"required"`
}

func (s *Server) attachMedia(c *gin.Context) {
	if s.d.OpenMedia == nil {
		notImplemented(c, "media files are not enabled")
		return
	}
	var req mediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"path\": string}")
		return
	}

	h, err := s.d.OpenMedia(c.Request.Context(), req.Path)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.d.Engine.AttachMedia(c.Request.Context(), h)
	s.finishAttach(c, p, err)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) generate(c *gin.Context) {
	if s.d.Generator == nil {
		notImplemented(c, "generation backend not configured")
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"prompt\": string}")
		return
	}

	data, err := s.d.Generator.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.attachBytes(c, data)
}

func (s *Server) attachBytes(c *gin.Context, data []byte) {
	p, err := s.d.Engine.AttachBytes(c.Request.Context(), data)
	s.finishAttach(c, p, err)
}

// finishAttach waits for the decode. A request that gives up first leaves
// the decode running; the engine still applies it.
func (s *Server) finishAttach(c *gin.Context, p *source.Pending, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.d.AttachTimeout)
	defer cancel()

	att, err := p.Wait(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := AttachResponse{
		ID:    att.ID.String(),
		Kind:  att.Kind.String(),
		State: s.stateResponse(),
	}
	if !math.IsNaN(att.Duration) {
		d := att.Duration
		resp.Duration = &d
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) renderers(c *gin.Context) {
	current := ""
	if s.d.Loop != nil {
		current = s.d.Loop.Renderer().Name()
	}
	c.JSON(http.StatusOK, gin.H{"renderers": visual.Names(), "current": current})
}

type rendererRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) setRenderer(c *gin.Context) {
	if s.d.Loop == nil {
		notImplemented(c, "visualizer disabled")
		return
	}
	var req rendererRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body must be {\"name\": string}")
		return
	}
	r, err := visual.ByName(req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.d.Loop.SetRenderer(r)
	c.JSON(http.StatusOK, gin.H{"current": r.Name()})
}

// visualizer serves the latest canvas, redrawn with ?mode= when given.
func (s *Server) visualizer(c *gin.Context) {
	if s.d.Loop == nil {
		notImplemented(c, "visualizer disabled")
		return
	}

	var r visual.Renderer
	if mode := c.Query("mode"); mode != "" {
		var err error
		if r, err = visual.ByName(mode); err != nil {
			s.fail(c, err)
			return
		}
	}

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := s.d.Loop.EncodePNG(c.Writer, r); err != nil {
		s.log.Error("encoding visualizer", "error", err)
	}
}
