// SPDX-License-Identifier: EPL-2.0

// Package httpapi exposes the playback engine over HTTP. Handlers only
// forward to the engine; every transition happens there.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ik5/audstudio/graph"
	"github.com/ik5/audstudio/playback"
	"github.com/ik5/audstudio/source"
	"github.com/ik5/audstudio/visual"
)

// Generator produces encoded audio for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// MediaOpener turns a server-side path into an external media handle.
type MediaOpener func(ctx context.Context, path string) (source.MediaHandle, error)

// Deps are the collaborators a Server forwards to. Generator, OpenMedia and
// Loop may be nil; their endpoints then answer 501.
type Deps struct {
	Graph     *graph.Context
	Engine    *playback.Engine
	Loop      *visual.Loop
	Generator Generator
	OpenMedia MediaOpener

	MaxUploadBytes int64
	// AttachTimeout bounds how long a request waits for a decode.
	AttachTimeout time.Duration
	Logger        *slog.Logger
}

type Server struct {
	d   Deps
	log *slog.Logger
}

func New(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 50 << 20
	}
	if d.AttachTimeout <= 0 {
		d.AttachTimeout = time.Minute
	}
	return &Server{d: d, log: log.With("component", "httpapi")}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.POST("/interact", s.interact)
		api.GET("/state", s.state)

		api.POST("/attach", s.attachUpload)
		api.POST("/media", s.attachMedia)
		api.POST("/generate", s.generate)

		api.POST("/play", s.transport(s.d.Engine.Play))
		api.POST("/pause", s.transport(s.d.Engine.Pause))
		api.POST("/toggle", s.transport(s.d.Engine.TogglePlayPause))
		api.POST("/stop", s.transport(s.d.Engine.Stop))
		api.POST("/replay", s.transport(s.d.Engine.Replay))
		api.POST("/seek", s.seek)
		api.POST("/volume", s.volume)
		api.POST("/mute", s.mute)

		api.GET("/renderers", s.renderers)
		api.POST("/renderer", s.setRenderer)
		api.GET("/visualizer.png", s.visualizer)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			s.log.Error("request", attrs...)
			return
		}
		s.log.Debug("request", attrs...)
	}
}
