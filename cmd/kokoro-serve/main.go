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

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlabs/kokoro-serve/internal/config"
	"github.com/voxlabs/kokoro-serve/internal/logging"
	"github.com/voxlabs/kokoro-serve/internal/server"
	"github.com/voxlabs/kokoro-serve/internal/tts"
)

func main() {
	// Initialize structured logging
	if err := logging.Initialize(); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.LogError(err, "Invalid configuration")
		log.Fatalf("Invalid configuration: %v", err)
	}

	pipeline, err := tts.NewPipeline(cfg.TTS)
	if err != nil {
		logging.LogError(err, "Failed to load Kokoro model")
		log.Fatalf("Failed to load Kokoro model: %v", err)
	}
	defer pipeline.Close()

	srv := server.New(cfg, pipeline)

	logging.Sugar.Infow("🚀 kokoro-serve starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"voice", cfg.TTS.Voice,
		"weights_dir", cfg.TTS.WeightsDir,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Sugar.Infow("Received shutdown signal", "signal", sig.String())
		if err := srv.Stop(); err != nil {
			logging.LogError(err, "Failed to stop server cleanly")
		}
	case err := <-errCh:
		if err != nil {
			logging.LogError(err, "Failed to start server")
			log.Fatalf("Failed to start server: %v", err)
		}
	}
}
