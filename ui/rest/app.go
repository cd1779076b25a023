package rest

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ateneai/wa-relay/core/config"
)

type App struct{}

func InitRestApp(app fiber.Router) App {
	handler := App{}

	app.Get("/health", handler.Liveness)

	return handler
}

func (h *App) Liveness(c *fiber.Ctx) error {
	version := ""
	if config.Global != nil {
		version = config.Global.App.Version
	}
	return c.JSON(fiber.Map{
		"status":    "OK",
		"service":   "wa-relay",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
