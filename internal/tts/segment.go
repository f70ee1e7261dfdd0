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

import "strings"

// maxSegmentRunes caps how much text a single synthesis call receives.
// Long sentences beyond the cap are split at word boundaries.
const maxSegmentRunes = 400

// SplitSegments divides input text into the chunks the pipeline synthesizes
// one at a time. Splitting happens at sentence boundaries first; sentences
// longer than maxSegmentRunes are further split at word boundaries. The
// result is never empty for non-blank input.
func SplitSegments(text string) []string {
	var segments []string

	for _, sentence := range splitSentences(text) {
		if len([]rune(sentence)) <= maxSegmentRunes {
			segments = append(segments, sentence)
			continue
		}
		segments = append(segments, splitLongSentence(sentence)...)
	}

	return segments
}

// splitSentences breaks text at terminal punctuation, keeping the
// punctuation attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n', '。', '！', '？':
			flush()
		}
	}
	flush()

	return sentences
}

// splitLongSentence breaks an over-long sentence at word boundaries.
func splitLongSentence(sentence string) []string {
	var parts []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(sentence) {
		wordLen := len([]rune(word))
		if currentLen > 0 && currentLen+wordLen+1 > maxSegmentRunes {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
