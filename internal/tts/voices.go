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
	"sort"
)

// voiceIDs maps Kokoro voice names to speaker embedding indices in the
// model's voices.bin. The prefix encodes accent and gender (af = American
// female, bm = British male, ...).
var voiceIDs = map[string]int{
	"af_alloy":    0,
	"af_aoede":    1,
	"af_bella":    2,
	"af_heart":    3,
	"af_jessica":  4,
	"af_kore":     5,
	"af_nicole":   6,
	"af_nova":     7,
	"af_river":    8,
	"af_sarah":    9,
	"af_sky":      10,
	"am_adam":     11,
	"am_echo":     12,
	"am_eric":     13,
	"am_fenrir":   14,
	"am_liam":     15,
	"am_michael":  16,
	"am_onyx":     17,
	"am_puck":     18,
	"bf_alice":    19,
	"bf_emma":     20,
	"bf_isabella": 21,
	"bf_lily":     22,
	"bm_daniel":   23,
	"bm_fable":    24,
	"bm_george":   25,
	"bm_lewis":    26,
}

// VoiceID resolves a voice name to its speaker embedding index.
func VoiceID(name string) (int, error) {
	id, ok := voiceIDs[name]
	if !ok {
		return 0, fmt.Errorf("unknown voice %q", name)
	}
	return id, nil
}

// Voices returns the known voice names in sorted order.
func Voices() []string {
	names := make([]string, 0, len(voiceIDs))
	for name := range voiceIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
