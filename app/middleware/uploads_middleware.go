package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// GuardUploads rejects file names that could leave the upload directory or
// expose hidden files.
func GuardUploads(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params(param)

		if name == "" || strings.HasPrefix(name, ".") ||
			strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"code":  fiber.StatusBadRequest,
				"error": "invalid file name",
			})
		}

		return c.Next()
	}
}
