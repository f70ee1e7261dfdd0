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

// Package audio converts model output samples into playable audio.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	wavHeaderSize     = 44
	bitsPerSample     = 16
	bytesPerSample    = 2
	monoChannelCount  = 1
	pcmAudioFormat    = 1
	riffChunkSizeBase = 36
)

// Float32ToInt16 converts samples in the [-1.0, 1.0] range to 16-bit PCM,
// clamping out-of-range values.
func Float32ToInt16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int16(s * math.MaxInt16)
	}
	return out
}

// EncodeWAV encodes mono float32 samples as a 16-bit PCM WAV file.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to encode")
	}

	pcm := Float32ToInt16(samples)
	dataSize := len(pcm) * bytesPerSample
	byteRate := sampleRate * monoChannelCount * bytesPerSample

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffChunkSizeBase+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(pcmAudioFormat))
	_ = binary.Write(buf, binary.LittleEndian, uint16(monoChannelCount))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(monoChannelCount*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	_ = binary.Write(buf, binary.LittleEndian, pcm)

	return buf.Bytes(), nil
}

// Duration returns the playback duration in seconds for a mono sample buffer.
func Duration(sampleCount, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(sampleCount) / float64(sampleRate)
}
