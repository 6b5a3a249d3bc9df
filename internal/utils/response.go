package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "notFound")
}

// ListResponse sends one page of a listing together with the unpaged total
func ListResponse(c *fiber.Ctx, items interface{}, total int64, limit, offset int) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":     true,
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// CreatedResponse sends the id of a newly created resource
func CreatedResponse(c *fiber.Ctx, id interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(MutationResponseStruct{
		Message:   "Created",
		Ok:        true,
		ID:        id,
		Timestamp: timestamp(),
	})
}

// MutationSuccessResponse sends a success response for deletes
func MutationSuccessResponse(c *fiber.Ctx, id interface{}) error {
	return c.Status(fiber.StatusOK).JSON(MutationResponseStruct{
		Message:   "Success",
		Ok:        true,
		ID:        id,
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// MutationResponseStruct defines the schema for create and delete responses
type MutationResponseStruct struct {
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	ID        interface{} `json:"id"`
	Timestamp string      `json:"timestamp"`
}
