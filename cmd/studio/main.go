// SPDX-License-Identifier: EPL-2.0

// Command studio runs the audio session engine behind an HTTP control
// surface, playing through the local audio device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ik5/audstudio"
	"github.com/ik5/audstudio/graph"
	"github.com/ik5/audstudio/graph/otoout"
	"github.com/ik5/audstudio/internal/config"
	"github.com/ik5/audstudio/internal/generate"
	"github.com/ik5/audstudio/internal/httpapi"
	"github.com/ik5/audstudio/internal/logging"
	"github.com/ik5/audstudio/media"
	"github.com/ik5/audstudio/playback"
	"github.com/ik5/audstudio/source"
	"github.com/ik5/audstudio/visual"
)

func main() {
	configPath := flag.String("config", os.Getenv("STUDIO_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "studio:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	renderer, err := visual.ByName(cfg.Renderer)
	if err != nil {
		return err
	}

	reg := graph.NewRegistry(otoout.Open, graph.Config{
		SampleRate:  cfg.SampleRate,
		BufferSize:  cfg.OutputBuffer,
		FFTSize:     cfg.FFTSize,
		Smoothing:   cfg.Smoothing,
		MinDecibels: cfg.MinDecibels,
		MaxDecibels: cfg.MaxDecibels,
		Logger:      log,
	})
	g, err := reg.Acquire()
	if err != nil {
		if errors.Is(err, graph.ErrUnsupportedEnvironment) {
			log.Error("audio output unavailable", "error", err)
		}
		return err
	}
	defer g.Close()

	decode := audstudio.NewDecodeFunc(audstudio.NewRegistry())
	engine := playback.New(g, decode, playback.WithLogger(log), playback.WithVolume(cfg.DefaultVolume))
	defer engine.Close()

	engine.OnChange(func(s playback.Snapshot) {
		log.Debug("transport", "state", s.State, "time", s.CurrentTime, "volume", s.Volume, "muted", s.IsMuted)
	})

	feed := visual.NewFeed(g.Tap(), renderer.Mode(), func() bool { return engine.Snapshot().IsPlaying })
	loop, err := visual.NewLoop(feed, renderer, visual.LoopConfig{
		Width:     cfg.CanvasWidth,
		Height:    cfg.CanvasHeight,
		FrameRate: cfg.FrameRate,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loop.Start(ctx); err != nil {
		return err
	}
	defer loop.Stop()

	var openMedia httpapi.MediaOpener
	if cfg.MediaRoot != "" {
		lib, err := media.NewLibrary(cfg.MediaRoot, decode, media.LibraryOptions{
			SampleRate: cfg.SampleRate,
			MaxBytes:   cfg.MaxUploadBytes,
			MaxEntries: cfg.MediaCacheEntries,
			Evicted: func(el *media.Element) {
				if err := engine.Forget(el); err != nil {
					log.Debug("releasing evicted media", "name", el.Name(), "error", err)
				}
			},
			Logger: log,
		})
		if err != nil {
			return err
		}
		defer lib.Close()
		openMedia = mediaOpener(lib)
	} else {
		log.Info("media_root not set, /api/media disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.New(httpapi.Deps{
		Graph:          g,
		Engine:         engine,
		Loop:           loop,
		Generator:      generate.NewClient(cfg.BackendURL, generate.WithLogger(log), generate.WithMaxBytes(cfg.MaxUploadBytes)),
		OpenMedia:      openMedia,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.ListenAddr, "sample_rate", cfg.SampleRate, "renderer", renderer.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// mediaOpener resolves names against lib, the only place /api/media reads.
func mediaOpener(lib *media.Library) httpapi.MediaOpener {
	return func(ctx context.Context, name string) (source.MediaHandle, error) {
		el, err := lib.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		return el, nil
	}
}
