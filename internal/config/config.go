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
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for kokoro-serve
type Config struct {
	Server  ServerConfig
	TTS     TTSConfig
	Hub     HubConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// TTSConfig holds the pipeline configuration for the Kokoro model
type TTSConfig struct {
	WeightsDir    string  // Directory populated by the weight fetcher
	Voice         string  // Default voice (e.g., "af_heart")
	Speed         float32 // Speech speed (1.0 = normal)
	NumThreads    int     // Inference threads
	MaxConcurrent int     // Maximum concurrent synthesis requests
}

// HubConfig holds model hub download configuration
type HubConfig struct {
	BaseURL     string // Hub endpoint (override for testing)
	ModelID     string // Remote repository identifier
	Destination string // Local snapshot directory
	EnvFile     string // dotenv file consulted for the access token
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnvString("KOKORO_HOST", "0.0.0.0"),
			Port:         getEnvInt("KOKORO_PORT", 7860),
			ReadTimeout:  getEnvDuration("KOKORO_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("KOKORO_WRITE_TIMEOUT", 120*time.Second),
		},
		TTS: TTSConfig{
			WeightsDir:    getEnvString("KOKORO_WEIGHTS_DIR", "./weights"),
			Voice:         getEnvString("KOKORO_VOICE", "af_heart"),
			Speed:         getEnvFloat32("KOKORO_SPEED", 1.0),
			NumThreads:    getEnvInt("KOKORO_NUM_THREADS", 4),
			MaxConcurrent: getEnvInt("KOKORO_MAX_CONCURRENT", 4),
		},
		Hub: HubConfig{
			BaseURL:     getEnvString("KOKORO_HUB_URL", "https://huggingface.co"),
			ModelID:     getEnvString("KOKORO_MODEL_ID", "hexgrad/Kokoro-82M"),
			Destination: getEnvString("KOKORO_WEIGHTS_DIR", "./weights"),
			EnvFile:     getEnvString("KOKORO_ENV_FILE", ".env"),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "console"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.TTS.WeightsDir == "" {
		return fmt.Errorf("weights directory must be provided")
	}

	if c.TTS.Voice == "" {
		return fmt.Errorf("voice must be provided")
	}

	if c.TTS.Speed <= 0 {
		return fmt.Errorf("TTS speed must be positive: %f", c.TTS.Speed)
	}

	if c.TTS.NumThreads <= 0 {
		return fmt.Errorf("TTS thread count must be positive: %d", c.TTS.NumThreads)
	}

	if c.TTS.MaxConcurrent <= 0 {
		return fmt.Errorf("TTS max concurrent must be positive: %d", c.TTS.MaxConcurrent)
	}

	if c.Hub.ModelID == "" {
		return fmt.Errorf("hub model ID must be provided")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
