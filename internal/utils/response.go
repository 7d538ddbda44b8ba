package utils

import "github.com/gofiber/fiber/v2"

// Envelope holds the resource-keyed fields of a response body. The success
// flag is injected by the send helpers, so callers only name their payload:
// SendSuccess(c, Envelope{"groups": groups}) renders
// {"success":true,"groups":[...]}.
type Envelope map[string]interface{}

// SendSuccess sends a 200 response with success:true merged into the payload.
func SendSuccess(c *fiber.Ctx, payload Envelope) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, payload)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, payload Envelope) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	body := fiber.Map{"success": true}
	for key, value := range payload {
		if key == "success" {
			continue
		}
		body[key] = value
	}

	return c.Status(status).JSON(body)
}

// SendError sends {"success":false,"error":message} with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
