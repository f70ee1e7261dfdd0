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

// Package tts wraps the Kokoro text-to-speech model behind a Pipeline that
// is constructed once at startup and shared read-only across requests.
package tts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/voxlabs/kokoro-serve/internal/config"
	"github.com/voxlabs/kokoro-serve/internal/logging"
	"github.com/voxlabs/kokoro-serve/internal/security"
)

// SampleRate is the fixed output sample rate of the Kokoro model.
const SampleRate = 24000

// semaphoreTimeout bounds how long a request waits for a synthesis slot.
const semaphoreTimeout = 5 * time.Second

var (
	// ErrEmptyText is returned when synthesis is requested for blank input.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrBusy is returned when all synthesis slots stay occupied past the
	// acquisition timeout.
	ErrBusy = errors.New("synthesis queue full, request timed out")
)

// generator is the minimal surface the pipeline needs from the underlying
// inference engine. The concrete implementation wraps sherpa-onnx; tests
// substitute a fake.
type generator interface {
	Generate(text string, speakerID int, speed float32) ([]float32, int, error)
	Close()
}

// Segment is one unit of synthesized audio. Long input produces several
// segments; each carries the text it was synthesized from.
type Segment struct {
	Index      int
	Text       string
	SampleRate int
	Samples    []float32
}

// Result is the output of a single synthesize call: the fixed sample rate
// paired with the head segment's samples.
type Result struct {
	SampleRate int
	Samples    []float32
}

// Pipeline is the process-wide synthesis handle. It is immutable after
// construction and safe for concurrent use; a semaphore bounds simultaneous
// model invocations.
type Pipeline struct {
	gen       generator
	voice     string
	speakerID int
	speed     float32
	semaphore chan struct{}
}

// NewPipeline constructs the pipeline from the configured weights directory.
// Construction failure is fatal to the caller: the service must not serve
// requests without a working pipeline.
func NewPipeline(cfg config.TTSConfig) (*Pipeline, error) {
	speakerID, err := VoiceID(cfg.Voice)
	if err != nil {
		return nil, fmt.Errorf("invalid voice configuration: %w", err)
	}

	gen, err := newSherpaGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load Kokoro model: %w", err)
	}

	p := newPipelineWithGenerator(gen, cfg.Voice, speakerID, cfg.Speed, cfg.MaxConcurrent)

	if logging.Sugar != nil {
		logging.Sugar.Infow("🔊 Kokoro pipeline initialized",
			"weights_dir", cfg.WeightsDir,
			"voice", cfg.Voice,
			"speed", cfg.Speed,
			"max_concurrent", cfg.MaxConcurrent,
		)
	}

	return p, nil
}

// newPipelineWithGenerator wires an explicit generator. Tests use this to
// avoid loading model weights.
func newPipelineWithGenerator(gen generator, voice string, speakerID int, speed float32, maxConcurrent int) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Pipeline{
		gen:       gen,
		voice:     voice,
		speakerID: speakerID,
		speed:     speed,
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Voice returns the configured voice name.
func (p *Pipeline) Voice() string {
	return p.voice
}

// Run splits text into segments and returns a lazy stream over them. No
// audio is synthesized until Next is called; the stream can be re-run from
// the start with Reset.
func (p *Pipeline) Run(ctx context.Context, text string) (*SegmentStream, error) {
	segments := SplitSegments(text)
	if len(segments) == 0 {
		return nil, ErrEmptyText
	}

	return &SegmentStream{
		pipeline: p,
		ctx:      ctx,
		texts:    segments,
	}, nil
}

// Synthesize converts text to audio and returns the head segment only.
// Remaining segments of long input are deliberately discarded; callers that
// need full output should consume a SegmentStream from Run instead.
func (p *Pipeline) Synthesize(ctx context.Context, text string) (*Result, error) {
	stream, err := p.Run(ctx, text)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	head, ok, err := stream.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmptyText
	}

	if discarded := stream.Remaining(); discarded > 0 {
		logging.LogWarn("Discarding trailing synthesis segments",
			zap.Int("discarded_segments", discarded),
			zap.String("text_preview", security.SanitizeLogInput(head.Text)),
		)
	}

	logging.LogTTSOperation("synthesis_complete",
		zap.String("voice", p.voice),
		zap.Int("text_length", len(text)),
		zap.Int("sample_count", len(head.Samples)),
		zap.Duration("processing_time", time.Since(start)),
	)

	return &Result{
		SampleRate: head.SampleRate,
		Samples:    head.Samples,
	}, nil
}

// Close releases the underlying model resources.
func (p *Pipeline) Close() {
	p.gen.Close()
}

// acquire claims a synthesis slot, giving up after semaphoreTimeout.
func (p *Pipeline) acquire(ctx context.Context) (release func(), err error) {
	select {
	case p.semaphore <- struct{}{}:
		return func() { <-p.semaphore }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(semaphoreTimeout):
		return nil, ErrBusy
	}
}

// SegmentStream lazily synthesizes one segment per Next call, in input
// order. It is not safe for concurrent use; each request owns its stream.
type SegmentStream struct {
	pipeline *Pipeline
	ctx      context.Context
	texts    []string
	next     int
}

// Next synthesizes and returns the next segment. ok is false once the
// stream is exhausted.
func (s *SegmentStream) Next() (seg *Segment, ok bool, err error) {
	if s.next >= len(s.texts) {
		return nil, false, nil
	}

	if err := s.ctx.Err(); err != nil {
		return nil, false, err
	}

	release, err := s.pipeline.acquire(s.ctx)
	if err != nil {
		return nil, false, err
	}
	defer release()

	index := s.next
	text := s.texts[index]

	samples, sampleRate, err := s.pipeline.gen.Generate(text, s.pipeline.speakerID, s.pipeline.speed)
	if err != nil {
		return nil, false, fmt.Errorf("synthesis failed for segment %d: %w", index, err)
	}

	s.next++

	return &Segment{
		Index:      index,
		Text:       text,
		SampleRate: sampleRate,
		Samples:    samples,
	}, true, nil
}

// Remaining reports how many segments have not been synthesized yet.
func (s *SegmentStream) Remaining() int {
	return len(s.texts) - s.next
}

// Reset rewinds the stream so it can be consumed again from the start.
func (s *SegmentStream) Reset() {
	s.next = 0
}
