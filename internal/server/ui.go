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

package server

import (
	"html/template"
	"net/http"

	"github.com/voxlabs/kokoro-serve/internal/logging"
)

// exampleInputs are shown on the form page so an operator can try the
// service without typing anything.
var exampleInputs = []string{
	"Hello, this is a text to speech demonstration.",
	"The quick brown fox jumps over the lazy dog.",
	"I hope you're having a wonderful day!",
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Kokoro TTS</title>
<style>
body { font-family: sans-serif; max-width: 42rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 6rem; font-size: 1rem; }
button { font-size: 1rem; padding: 0.4rem 1.2rem; margin-top: 0.5rem; }
.example { cursor: pointer; color: #0366d6; margin: 0.2rem 0; }
#error { color: #b00020; }
</style>
</head>
<body>
<h1>Kokoro TTS</h1>
<p>Convert text to speech using the Kokoro TTS model ({{.Voice}}).</p>
<form id="tts-form">
<textarea id="text" name="text" placeholder="Enter text to convert to speech..."></textarea>
<br>
<button type="submit">Generate Speech</button>
</form>
<p id="error"></p>
<audio id="player" controls hidden></audio>
<h2>Examples</h2>
{{range .Examples}}<p class="example">{{.}}</p>
{{end}}
<script>
const form = document.getElementById('tts-form');
const player = document.getElementById('player');
const errorBox = document.getElementById('error');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  errorBox.textContent = '';
  const body = new URLSearchParams({ text: document.getElementById('text').value });
  const resp = await fetch('/synthesize.wav', { method: 'POST', body });
  if (!resp.ok) {
    const err = await resp.json().catch(() => ({ error: 'synthesis failed' }));
    errorBox.textContent = err.error;
    return;
  }
  player.src = URL.createObjectURL(await resp.blob());
  player.hidden = false;
  player.play();
});
for (const el of document.querySelectorAll('.example')) {
  el.addEventListener('click', () => { document.getElementById('text').value = el.textContent; });
}
</script>
</body>
</html>
`))

// handleIndex renders the demo form page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// ServeMux routes every unmatched path here; keep the page on / only
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := struct {
		Voice    string
		Examples []string
	}{
		Voice:    s.pipeline.Voice(),
		Examples: exampleInputs,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logging.LogError(err, "Failed to render form page")
	}
}
