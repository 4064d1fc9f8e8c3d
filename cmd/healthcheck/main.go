// main.go
//
// AgriLearn, a course, community and marketplace service for farmers
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of agrilearn.
// agrilearn is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// agrilearn is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with agrilearn.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/localnerve/agrilearn/internal/config"
	"github.com/localnerve/agrilearn/internal/database"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := database.Connect(cfg, lg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var pinger services.Pinger
	if cfg.RedisAddr != "" {
		pub, err := events.NewRedisPublisher(cfg.RedisAddr, cfg.RedisChannel, lg)
		if err != nil {
			pinger = failedPing{err}
		} else {
			defer pub.Close()
			pinger = pub
		}
	}

	result := services.HealthCheck(context.Background(), cfg, db, pinger, lg)
	_ = database.Close(db)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}
	fmt.Println(string(output))

	if result.Status != "healthy" {
		os.Exit(1)
	}
}

// failedPing reports the connect error as the ping result
type failedPing struct{ err error }

func (f failedPing) Ping(context.Context) error { return f.err }
