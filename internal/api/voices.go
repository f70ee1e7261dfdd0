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
	"encoding/json"
	"net/http"

	"github.com/voxlabs/kokoro-serve/internal/logging"
	"github.com/voxlabs/kokoro-serve/internal/tts"
)

// VoicesResponse lists the voice names the model ships with
type VoicesResponse struct {
	Voices []string `json:"voices"`
}

// HandleVoices handles GET /api/voices
func HandleVoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(VoicesResponse{Voices: tts.Voices()}); err != nil {
		logging.LogError(err, "Failed to encode voices response")
	}
}
