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
	"fmt"
	"os"
	"path/filepath"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/voxlabs/kokoro-serve/internal/config"
)

// Expected file layout inside the weights directory. The download-weights
// tool mirrors these from the model repository.
const (
	modelFileName  = "model.onnx"
	voicesFileName = "voices.bin"
	tokensFileName = "tokens.txt"
	espeakDataDir  = "espeak-ng-data"
)

// sherpaGenerator runs Kokoro inference through sherpa-onnx offline TTS.
// The underlying handle is safe for concurrent Generate calls; the pipeline
// still bounds concurrency to keep memory in check.
type sherpaGenerator struct {
	tts *sherpa.OfflineTts
}

func newSherpaGenerator(cfg config.TTSConfig) (*sherpaGenerator, error) {
	modelPath := filepath.Join(cfg.WeightsDir, modelFileName)
	voicesPath := filepath.Join(cfg.WeightsDir, voicesFileName)
	tokensPath := filepath.Join(cfg.WeightsDir, tokensFileName)
	dataDir := filepath.Join(cfg.WeightsDir, espeakDataDir)

	for _, required := range []string{modelPath, voicesPath, tokensPath} {
		if _, err := os.Stat(required); err != nil {
			return nil, fmt.Errorf("missing model file %s (run download-weights first): %w", required, err)
		}
	}

	ttsConfig := sherpa.OfflineTtsConfig{}
	ttsConfig.Model.Kokoro.Model = modelPath
	ttsConfig.Model.Kokoro.Voices = voicesPath
	ttsConfig.Model.Kokoro.Tokens = tokensPath
	ttsConfig.Model.Kokoro.DataDir = dataDir
	ttsConfig.Model.Kokoro.LengthScale = 1.0
	ttsConfig.Model.NumThreads = cfg.NumThreads
	ttsConfig.Model.Provider = "cpu"

	tts := sherpa.NewOfflineTts(&ttsConfig)
	if tts == nil {
		return nil, fmt.Errorf("sherpa-onnx rejected model configuration in %s", cfg.WeightsDir)
	}

	return &sherpaGenerator{tts: tts}, nil
}

// Generate synthesizes one segment of text. Blocking for the duration of
// model inference.
func (g *sherpaGenerator) Generate(text string, speakerID int, speed float32) ([]float32, int, error) {
	audio := g.tts.Generate(text, speakerID, speed)
	if audio == nil || len(audio.Samples) == 0 {
		return nil, 0, fmt.Errorf("model produced no audio")
	}

	return audio.Samples, audio.SampleRate, nil
}

// Close releases the native model handle.
func (g *sherpaGenerator) Close() {
	if g.tts != nil {
		sherpa.DeleteOfflineTts(g.tts)
		g.tts = nil
	}
}
