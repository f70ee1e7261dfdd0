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

package config

import (
	"os"

	"github.com/joho/godotenv"
)

// tokenEnvVars lists the environment variable names consulted for the hub
// access token, in precedence order. Both names are accepted for
// compatibility with existing Hugging Face tooling.
var tokenEnvVars = []string{"HUGGING_FACE_TOKEN", "HUGGING_FACE_HUB_TOKEN"}

// ResolveToken returns the hub access token with the following precedence:
// the explicit flag value, then values from a dotenv file, then process
// environment variables. The first non-empty value wins. getenv is injected
// so precedence can be tested without mutating the process environment.
func ResolveToken(flagToken string, fileVars map[string]string, getenv func(string) string) string {
	if flagToken != "" {
		return flagToken
	}

	for _, name := range tokenEnvVars {
		if value := fileVars[name]; value != "" {
			return value
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}

	for _, name := range tokenEnvVars {
		if value := getenv(name); value != "" {
			return value
		}
	}

	return ""
}

// ReadEnvFile parses a dotenv file into a key/value map. A missing file is
// not an error; token resolution simply falls through to the environment.
func ReadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}

	return vars, nil
}
