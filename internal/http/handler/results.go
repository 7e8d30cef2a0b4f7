package handler

import (
	"github.com/gofiber/fiber/v2"

	"acsgateway/internal/service"
)

// GetResults handles GET /extractor/results/:id. Successful reports are
// cacheable for five minutes but must never be indexed by crawlers.
func GetResults(svc service.ExtractorService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.GetReport(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeFailure(c, err)
		}

		c.Set(fiber.HeaderCacheControl, "public, max-age=300, s-maxage=300")
		c.Set("X-Robots-Tag", "noindex, nofollow")
		return c.JSON(rep)
	}
}
