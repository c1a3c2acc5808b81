package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature that exposes HTTP endpoints.
type Route interface {
	Setup(app *fiber.App)
}
