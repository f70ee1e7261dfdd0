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

// Package api exposes the synthesis operation over HTTP. Each request is
// independent; a failed request is reported to the caller and never takes
// the service down.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxlabs/kokoro-serve/internal/audio"
	"github.com/voxlabs/kokoro-serve/internal/logging"
	"github.com/voxlabs/kokoro-serve/internal/security"
	"github.com/voxlabs/kokoro-serve/internal/tts"
)

// Synthesizer is the pipeline surface the HTTP layer depends on. The
// concrete implementation is *tts.Pipeline, injected at server construction.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*tts.Result, error)
	Voice() string
}

// SynthesizeHandler handles synthesis requests
type SynthesizeHandler struct {
	pipeline Synthesizer
}

// NewSynthesizeHandler creates a new synthesis handler
func NewSynthesizeHandler(pipeline Synthesizer) *SynthesizeHandler {
	return &SynthesizeHandler{pipeline: pipeline}
}

// SynthesizeRequest represents the JSON request body for synthesis
type SynthesizeRequest struct {
	Text string `json:"text"`
}

// SynthesizeResponse represents the JSON response for synthesis
type SynthesizeResponse struct {
	SampleRate      int       `json:"sample_rate"`
	Samples         []float32 `json:"samples"`
	DurationSeconds float64   `json:"duration_seconds"`
	Voice           string    `json:"voice"`
}

// errorResponse is the JSON error body surfaced to the caller
type errorResponse struct {
	Error string `json:"error"`
}

// HandleSynthesize handles POST /api/synthesize
func (h *SynthesizeHandler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	result, status, err := h.synthesize(r, req.Text)
	if err != nil {
		writeError(w, status, "Failed to generate speech: "+err.Error())
		return
	}

	response := SynthesizeResponse{
		SampleRate:      result.SampleRate,
		Samples:         result.Samples,
		DurationSeconds: audio.Duration(len(result.Samples), result.SampleRate),
		Voice:           h.pipeline.Voice(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(err, "Failed to encode synthesis response")
	}
}

// HandleSynthesizeWAV handles POST /synthesize.wav, the form-facing variant
// returning playable audio for the browser
func (h *SynthesizeHandler) HandleSynthesizeWAV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	result, status, err := h.synthesize(r, r.FormValue("text"))
	if err != nil {
		writeError(w, status, "Failed to generate speech: "+err.Error())
		return
	}

	wav, err := audio.EncodeWAV(result.Samples, result.SampleRate)
	if err != nil {
		logging.LogError(err, "Failed to encode WAV output")
		writeError(w, http.StatusInternalServerError, "Failed to encode audio")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	if _, err := w.Write(wav); err != nil {
		logging.LogError(err, "Failed to write WAV response")
	}
}

// synthesize runs the shared request flow for both endpoints. Failures are
// logged here, at the boundary nearest their origin, and returned as values
// for the caller to surface.
func (h *SynthesizeHandler) synthesize(r *http.Request, text string) (*tts.Result, int, error) {
	requestID := uuid.New().String()
	text = strings.TrimSpace(text)

	logging.LogTTSOperation("synthesis_start",
		zap.String("request_id", requestID),
		zap.Int("text_length", len(text)),
	)

	result, err := h.pipeline.Synthesize(r.Context(), text)
	if err != nil {
		logging.LogError(err, "Speech synthesis failed",
			zap.String("request_id", requestID),
			zap.String("text_preview", security.SanitizeLogInput(preview(text))),
		)

		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, tts.ErrEmptyText):
			status = http.StatusBadRequest
		case errors.Is(err, tts.ErrBusy):
			status = http.StatusServiceUnavailable
		}
		return nil, status, err
	}

	return result, http.StatusOK, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// preview truncates user text for log output
func preview(text string) string {
	const maxPreview = 80
	runes := []rune(text)
	if len(runes) <= maxPreview {
		return text
	}
	return string(runes[:maxPreview]) + "..."
}
