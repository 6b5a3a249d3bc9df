package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/cors"
)

// CORS applies the allowed origins to browser requests
func CORS(origins []string) fiber.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions},
		AllowedHeaders:   []string{fiber.HeaderContentType, fiber.HeaderAuthorization, "X-Api-Version"},
		ExposedHeaders:   []string{"X-Api-Version"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return adaptor.HTTPMiddleware(c.Handler)
}
