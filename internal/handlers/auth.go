// auth.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/models"
	"github.com/localnerve/macrosdb/internal/services"
	"github.com/localnerve/macrosdb/internal/utils"
)

// AuthHandler handles account registration and login
type AuthHandler struct {
	Auth *services.AuthService
}

// LoginInput is the body of a login
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent requests
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	user, err := h.Auth.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusCreated)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	token, user, err := h.Auth.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, LoginResponse{Token: token, User: user}, fiber.StatusOK)
}
