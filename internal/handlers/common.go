// common.go
//
// A coaching nutrition data service: foods, recipes, meals and diet plans
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of macrosdb.
// macrosdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// macrosdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with macrosdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/middleware"
	"github.com/localnerve/macrosdb/internal/nutrition"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/types"
	"github.com/localnerve/macrosdb/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error returned by a handler or middleware as the standard
// error envelope
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, errorType, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"url":    c.OriginalURL(),
			}).Error("request failed")
		}
		return utils.ErrorResponse(c, message, status, errorType)
	}
}

// classify maps an error to its status code, envelope type and client message
func classify(err error) (int, string, string) {
	var (
		fiberErr    *fiber.Error
		custom      *types.CustomError
		validation  *types.ValidationError
		invalidUnit *types.InvalidUnitError
		mismatch    *nutrition.CalorieMismatchError
		forbidden   *types.ForbiddenError
		notFound    *types.NotFoundError
		conflict    *types.ConflictError
		persistence *types.PersistenceError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "http", fiberErr.Message
	case errors.As(err, &custom):
		return custom.Code, custom.Type, custom.Message
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, "validation", validation.Error()
	case errors.As(err, &invalidUnit):
		return fiber.StatusBadRequest, "unit", invalidUnit.Error()
	case errors.As(err, &mismatch):
		return fiber.StatusBadRequest, "validation", mismatch.Error()
	case errors.As(err, &forbidden):
		return fiber.StatusForbidden, "forbidden", forbidden.Error()
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, "notFound", notFound.Error()
	case errors.As(err, &conflict):
		return fiber.StatusConflict, "conflict", conflict.Error()
	case errors.As(err, &persistence):
		// driver messages stay in the log
		return fiber.StatusInternalServerError, "persistence", "Failed to " + persistence.Op
	}
	return fiber.StatusInternalServerError, "unknown", err.Error()
}

// actor returns the authenticated caller, or the anonymous actor
func actor(c *fiber.Ctx) policy.Actor {
	a, _ := middleware.Actor(c)
	return a
}

// parseID reads the :id route parameter
func parseID(c *fiber.Ctx) (uint64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewValidationError("id", "must be a positive integer, got %q", raw)
	}
	return id, nil
}

// parseBody decodes the JSON request body into v
func parseBody(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return types.NewValidationError("body", "request body is required")
	}
	if err := c.BodyParser(v); err != nil {
		return types.NewValidationError("body", "invalid request body: %v", err)
	}
	return nil
}

// listFilter reads search, category, limit and offset from the query string
func listFilter(c *fiber.Ctx) services.ListFilter {
	return services.ListFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	}
}

// listResponse sends a page of items with the page bounds the query applied
func listResponse(c *fiber.Ctx, items interface{}, total int64, filter services.ListFilter) error {
	limit, offset := filter.Page()
	return utils.ListResponse(c, items, total, limit, offset)
}

// visibleOr404 hides resources the caller may not read
func visibleOr404(resource policy.Owned, a policy.Actor, kind string, id uint64) error {
	if !policy.CanView(resource, a) {
		return &types.NotFoundError{Resource: kind, ID: id}
	}
	return nil
}
