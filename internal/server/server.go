/*
 * This file is part of Kokoro Serve (https://github.com/voxlabs/kokoro-serve).
 * Copyright (C) 2026 Voxlabs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

// Package server ties the synthesis pipeline to its HTTP surface: the demo
// form page, the JSON API, and the health endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/voxlabs/kokoro-serve/internal/api"
	"github.com/voxlabs/kokoro-serve/internal/config"
	"github.com/voxlabs/kokoro-serve/internal/logging"
	"github.com/voxlabs/kokoro-serve/internal/tts"
)

// Server represents the HTTP front of the synthesis pipeline
type Server struct {
	cfg      *config.Config
	mux      *http.ServeMux
	server   *http.Server
	pipeline api.Synthesizer

	synthesize *api.SynthesizeHandler

	// Server context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server bound to an already-constructed pipeline. The
// pipeline must exist before any request can be dispatched; enforcing that
// ordering at the type level keeps startup failure handling in main.
func New(cfg *config.Config, pipeline api.Synthesizer) *Server {
	mux := http.NewServeMux()

	// Create server context
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:        cfg,
		mux:        mux,
		pipeline:   pipeline,
		synthesize: api.NewSynthesizeHandler(pipeline),
		ctx:        ctx,
		cancel:     cancel,
	}

	// Set up HTTP server
	s.server = &http.Server{
		Addr:         net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port)),
		Handler:      s.mux,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Set up routes
	s.routes()

	return s
}

// Start starts the server and blocks until it is shut down
func (s *Server) Start() error {
	logging.Sugar.Infow("🚀 Kokoro Serve starting",
		"host", s.cfg.Server.Host,
		"port", s.cfg.Server.Port,
		"voice", s.pipeline.Voice(),
	)
	logging.LogServerEvent("listening", zap.String("addr", s.server.Addr))

	// Start HTTP server
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down Kokoro Serve")

	s.cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logging.LogServerEvent("shutdown_complete")
	return nil
}

// routes sets up HTTP routing
func (s *Server) routes() {
	// Demo form page
	s.mux.HandleFunc("/", s.handleIndex)

	// Health check
	s.mux.HandleFunc("/health", s.handleHealth)

	// Synthesis endpoints
	s.mux.HandleFunc("/api/synthesize", s.synthesize.HandleSynthesize)
	s.mux.HandleFunc("/api/voices", api.HandleVoices)
	s.mux.HandleFunc("/synthesize.wav", s.synthesize.HandleSynthesizeWAV)

	logging.Sugar.Infow("🌐 HTTP routes configured",
		"form_endpoint", "/",
		"synthesize_endpoint", "/api/synthesize",
		"wav_endpoint", "/synthesize.wav",
		"voices_endpoint", "/api/voices")
}

// handleHealth provides system health information
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now(),
		"voice":       s.pipeline.Voice(),
		"sample_rate": tts.SampleRate,
		"weights_dir": s.cfg.TTS.WeightsDir,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		logging.Sugar.Errorw("Failed to write health response", "error", err)
	}
}
