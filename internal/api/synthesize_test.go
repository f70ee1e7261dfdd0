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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/voxlabs/kokoro-serve/internal/tts"
)

// fakeSynthesizer stands in for the pipeline in handler tests.
type fakeSynthesizer struct {
	failOn string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) (*tts.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, tts.ErrEmptyText
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("model error")
	}

	return &tts.Result{
		SampleRate: tts.SampleRate,
		Samples:    []float32{0.1, 0.2, 0.3, -0.1},
	}, nil
}

func (f *fakeSynthesizer) Voice() string {
	return "af_heart"
}

func TestHandleSynthesize_Success(t *testing.T) {
	handler := NewSynthesizeHandler(&fakeSynthesizer{})

	body := `{"text": "Hello, this is a text to speech demonstration."}`
	req := httptest.NewRequest(http.MethodPost, "/api/synthesize", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleSynthesize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp SynthesizeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want 24000", resp.SampleRate)
	}
	if len(resp.Samples) == 0 {
		t.Error("Expected non-empty samples")
	}
	if resp.Voice != "af_heart" {
		t.Errorf("Voice = %q, want %q", resp.Voice, "af_heart")
	}
	if resp.DurationSeconds <= 0 {
		t.Errorf("DurationSeconds = %f, want > 0", resp.DurationSeconds)
	}
}

func TestHandleSynthesize_EmptyText(t *testing.T) {
	handler := NewSynthesizeHandler(&fakeSynthesizer{})

	for _, body := range []string{`{"text": ""}`, `{"text": "   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/synthesize", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleSynthesize(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status for body %q = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestHandleSynthesize_InvalidJSON(t *testing.T) {
	handler := NewSynthesizeHandler(&fakeSynthesizer{})

	req := httptest.NewRequest(http.MethodPost, "/api/synthesize", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.HandleSynthesize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleSynthesize_MethodNotAllowed(t *testing.T) {
	handler := NewSynthesizeHandler(&fakeSynthesizer{})

	req := httptest.NewRequest(http.MethodGet, "/api/synthesize", nil)
	rec := httptest.NewRecorder()

	handler.HandleSynthesize(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleSynthesize_RequestIsolation(t *testing.T) {
	// A failing request must not prevent a subsequent valid request from
	// succeeding against the same handler.
	handler := NewSynthesizeHandler(&fakeSynthesizer{failOn: "poison"})

	failReq := httptest.NewRequest(http.MethodPost, "/api/synthesize",
		strings.NewReader(`{"text": "poison input"}`))
	failRec := httptest.NewRecorder()
	handler.HandleSynthesize(failRec, failReq)

	if failRec.Code != http.StatusInternalServerError {
		t.Fatalf("Poisoned request status = %d, want %d", failRec.Code, http.StatusInternalServerError)
	}

	var errResp errorResponse
	if err := json.NewDecoder(failRec.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if !strings.Contains(errResp.Error, "Failed to generate speech") {
		t.Errorf("Error message %q should be user-facing", errResp.Error)
	}

	okReq := httptest.NewRequest(http.MethodPost, "/api/synthesize",
		strings.NewReader(`{"text": "The quick brown fox jumps over the lazy dog."}`))
	okRec := httptest.NewRecorder()
	handler.HandleSynthesize(okRec, okReq)

	if okRec.Code != http.StatusOK {
		t.Errorf("Request after failure status = %d, want %d", okRec.Code, http.StatusOK)
	}
}

func TestHandleSynthesizeWAV(t *testing.T) {
	handler := NewSynthesizeHandler(&fakeSynthesizer{})

	form := url.Values{"text": {"Hello, this is a text to speech demonstration."}}
	req := httptest.NewRequest(http.MethodPost, "/synthesize.wav", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.HandleSynthesizeWAV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q, want %q", ct, "audio/wav")
	}
	if body := rec.Body.Bytes(); len(body) < 44 || string(body[0:4]) != "RIFF" {
		t.Error("Response body is not a WAV file")
	}
}

func TestHandleSynthesizeWAV_EmptyText(t *testing.T) {
	handler := NewSynthesizeHandler(&fakeSynthesizer{})

	req := httptest.NewRequest(http.MethodPost, "/synthesize.wav", strings.NewReader("text="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handler.HandleSynthesizeWAV(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleVoices(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/voices", nil)
	rec := httptest.NewRecorder()

	HandleVoices(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp VoicesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode voices response: %v", err)
	}
	if len(resp.Voices) == 0 {
		t.Error("Expected non-empty voice list")
	}
}
