// common.go
//
// AgriLearn learning and community service
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

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/agrilearn/internal/events"
	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/types"
)

// parseID reads a UUID path parameter
func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, types.ValidationFailed("request.invalid_id", "Invalid "+name, map[string]string{
			name: "must be a UUID",
		})
	}
	return id, nil
}

// parsePage reads the page and limit query parameters.
// Missing or malformed values fall back to the service defaults.
func parsePage(c *fiber.Ctx) services.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return services.PageRequest{Page: page, Limit: limit}
}

// parseBody decodes the JSON body into v. Unknown keys are refused.
func parseBody(c *fiber.Ctx, v interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return types.ValidationFailed("request.body", "Request body is required", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return types.ValidationFailed("request.body", "Invalid request body: "+err.Error(), nil)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return types.ValidationFailed("request.body", "Invalid request body: trailing data", nil)
	}
	return nil
}

// publish sends an event and only logs a failure
func publish(ctx context.Context, pub events.Publisher, log *logger.Logger, e events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, e); err != nil {
		log.Warn("event publish failed", "type", e.Type, "error", err)
	}
}
