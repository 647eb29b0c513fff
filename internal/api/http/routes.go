package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// RegisterRoutes wires the air quality handlers into the Fiber app under
// /api. middleware runs before every /api route except the health check.
func RegisterRoutes(app *fiber.App, service *airquality.Service, zone airquality.Zone, middleware ...fiber.Handler) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Server is live"})
	})

	api := app.Group("/api", middleware...)

	// Live pollution for the nearest city of the given coordinates.
	api.Get("/air-quality", func(c *fiber.Ctx) error {
		result, err := service.LiveLookup(c.UserContext(), airquality.LiveQuery{
			Latitude:  c.Query("latitude"),
			Longitude: c.Query("longitude"),
		})
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	// Most polluted recorded moment of the configured zone.
	api.Get("/zone/"+zone.Slug()+"/most-polluted-timestamp", func(c *fiber.Ctx) error {
		result, err := service.MostPolluted(c.UserContext(), zone.Name, c.Query("pollutionType"))
		if err != nil {
			return err
		}
		return c.JSON(result)
	})
}
