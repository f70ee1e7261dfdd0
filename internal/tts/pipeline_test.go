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

package tts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxlabs/kokoro-serve/internal/config"
)

// fakeGenerator produces deterministic audio without loading model weights.
// failOn triggers an error for segments containing that substring.
type fakeGenerator struct {
	failOn    string
	calls     []string
	sampleLen int
	closed    bool
}

func (f *fakeGenerator) Generate(text string, speakerID int, speed float32) ([]float32, int, error) {
	f.calls = append(f.calls, text)
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, 0, errors.New("model error")
	}

	n := f.sampleLen
	if n == 0 {
		n = 240
	}
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.1
	}
	return samples, SampleRate, nil
}

func (f *fakeGenerator) Close() {
	f.closed = true
}

func newTestPipeline(gen *fakeGenerator) *Pipeline {
	return newPipelineWithGenerator(gen, "af_heart", 3, 1.0, 4)
}

func TestSynthesize_SampleRate(t *testing.T) {
	pipeline := newTestPipeline(&fakeGenerator{})

	inputs := []string{
		"Hello, this is a text to speech demonstration.",
		"The quick brown fox jumps over the lazy dog.",
		"Short",
		"One. Two. Three.",
	}

	for _, input := range inputs {
		result, err := pipeline.Synthesize(context.Background(), input)
		if err != nil {
			t.Fatalf("Synthesize(%q) error = %v", input, err)
		}
		if result.SampleRate != 24000 {
			t.Errorf("Synthesize(%q) sample rate = %d, want 24000", input, result.SampleRate)
		}
		if len(result.Samples) == 0 {
			t.Errorf("Synthesize(%q) returned no samples", input)
		}
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	pipeline := newTestPipeline(&fakeGenerator{})

	for _, input := range []string{"", "   ", "\n\n"} {
		_, err := pipeline.Synthesize(context.Background(), input)
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Synthesize(%q) error = %v, want ErrEmptyText", input, err)
		}
	}
}

func TestSynthesize_HeadSegmentOnly(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline := newTestPipeline(gen)

	// Three sentences produce three segments; only the first is synthesized.
	result, err := pipeline.Synthesize(context.Background(), "First sentence. Second sentence. Third sentence.")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("Generator called %d times, want 1 (head segment only)", len(gen.calls))
	}
	if gen.calls[0] != "First sentence." {
		t.Errorf("Generator received %q, want %q", gen.calls[0], "First sentence.")
	}
	if len(result.Samples) == 0 {
		t.Error("Expected samples from head segment")
	}
}

func TestSynthesize_RequestIsolation(t *testing.T) {
	gen := &fakeGenerator{failOn: "poison"}
	pipeline := newTestPipeline(gen)

	// A failing request must not affect a subsequent valid one.
	if _, err := pipeline.Synthesize(context.Background(), "poison input"); err == nil {
		t.Fatal("Expected error for poisoned input, got nil")
	}

	result, err := pipeline.Synthesize(context.Background(), "Hello, this is a text to speech demonstration.")
	if err != nil {
		t.Fatalf("Synthesize() after failure error = %v", err)
	}
	if len(result.Samples) == 0 {
		t.Error("Expected non-empty samples after a prior failure")
	}
}

func TestRun_StreamConsumesAllSegments(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline := newTestPipeline(gen)

	stream, err := pipeline.Run(context.Background(), "One. Two. Three.")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var segments []*Segment
	for {
		seg, ok, err := stream.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		segments = append(segments, seg)
	}

	if len(segments) != 3 {
		t.Fatalf("Stream produced %d segments, want 3", len(segments))
	}
	for i, seg := range segments {
		if seg.Index != i {
			t.Errorf("Segment %d has index %d", i, seg.Index)
		}
		if seg.SampleRate != 24000 {
			t.Errorf("Segment %d sample rate = %d, want 24000", i, seg.SampleRate)
		}
	}
	if stream.Remaining() != 0 {
		t.Errorf("Remaining() = %d after exhaustion, want 0", stream.Remaining())
	}
}

func TestRun_StreamReset(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline := newTestPipeline(gen)

	stream, err := pipeline.Run(context.Background(), "One. Two.")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok, err := stream.Next(); err != nil || !ok {
		t.Fatalf("Next() = ok=%v, err=%v", ok, err)
	}

	stream.Reset()
	if stream.Remaining() != 2 {
		t.Errorf("Remaining() after Reset = %d, want 2", stream.Remaining())
	}

	seg, ok, err := stream.Next()
	if err != nil || !ok {
		t.Fatalf("Next() after Reset = ok=%v, err=%v", ok, err)
	}
	if seg.Index != 0 {
		t.Errorf("Segment index after Reset = %d, want 0", seg.Index)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	pipeline := newTestPipeline(&fakeGenerator{})

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := pipeline.Run(ctx, "Hello there.")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	cancel()

	_, _, err = stream.Next()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Next() after cancel error = %v, want context.Canceled", err)
	}
}

func TestSynthesize_ConcurrentRequests(t *testing.T) {
	pipeline := newTestPipeline(&fakeGenerator{})

	const workers = 8
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			_, err := pipeline.Synthesize(context.Background(), "Concurrent request test.")
			errs <- err
		}()
	}

	for i := 0; i < workers; i++ {
		if err := <-errs; err != nil {
			t.Errorf("Concurrent Synthesize() error = %v", err)
		}
	}
}

func TestPipeline_Close(t *testing.T) {
	gen := &fakeGenerator{}
	pipeline := newTestPipeline(gen)

	pipeline.Close()
	if !gen.closed {
		t.Error("Close() did not release the generator")
	}
}

func TestNewPipeline_MissingWeights(t *testing.T) {
	cfg := config.TTSConfig{
		WeightsDir:    t.TempDir(), // Empty: no model files
		Voice:         "af_heart",
		Speed:         1.0,
		NumThreads:    1,
		MaxConcurrent: 1,
	}

	_, err := NewPipeline(cfg)
	if err == nil {
		t.Fatal("NewPipeline() with empty weights dir expected error, got nil")
	}
	if !strings.Contains(err.Error(), "download-weights") {
		t.Errorf("NewPipeline() error %q should point the operator at download-weights", err)
	}
}

func TestNewPipeline_UnknownVoice(t *testing.T) {
	cfg := config.TTSConfig{
		WeightsDir:    t.TempDir(),
		Voice:         "nonexistent_voice",
		Speed:         1.0,
		NumThreads:    1,
		MaxConcurrent: 1,
	}

	_, err := NewPipeline(cfg)
	if err == nil {
		t.Fatal("NewPipeline() with unknown voice expected error, got nil")
	}
	if !strings.Contains(err.Error(), "voice") {
		t.Errorf("NewPipeline() error %q should mention the voice", err)
	}
}
