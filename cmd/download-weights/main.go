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

// download-weights fetches the Kokoro model repository into the local
// weights directory so kokoro-serve can load it at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlabs/kokoro-serve/internal/config"
	"github.com/voxlabs/kokoro-serve/internal/hub"
	"github.com/voxlabs/kokoro-serve/internal/logging"
)

func main() {
	flagToken := flag.String("token", "", "Hugging Face access token (overrides .env and environment)")
	flag.Parse()

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

	fileVars, err := config.ReadEnvFile(cfg.Hub.EnvFile)
	if err != nil {
		logging.LogError(err, "Failed to read env file")
		fileVars = nil
	}
	token := config.ResolveToken(*flagToken, fileVars, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Downloading %s into %s ...\n", cfg.Hub.ModelID, cfg.Hub.Destination)

	client := hub.NewClient(cfg.Hub.BaseURL, token)
	if err := client.Snapshot(ctx, cfg.Hub.ModelID, cfg.Hub.Destination); err != nil {
		logging.LogError(err, "Snapshot failed")
		fmt.Printf("Download failed: %v\n", err)
		fmt.Println("Please make sure your Hugging Face token is correct.")
		fmt.Println("You can pass it with --token, set HUGGING_FACE_TOKEN, or add it to", cfg.Hub.EnvFile)
		fmt.Println("Create a token at https://huggingface.co/settings/tokens")
		// The weights are optional at this point; exit cleanly so wrapper
		// scripts can continue.
		os.Exit(0)
	}

	fmt.Printf("Weights ready in %s\n", cfg.Hub.Destination)
}
