package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"acsgateway/internal/http/middleware"
	"acsgateway/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
//
// limit is the configured rate-limit budget per window, echoed by the
// extraction endpoint in X-RateLimit-Limit; field is the multipart field
// name carrying uploads. CORS is scoped per route: the extraction endpoint
// accepts POST, the results endpoint only GET.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ExtractorService, limit int, field string) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	extractCORS := middleware.CORS("POST, OPTIONS")
	app.Post("/extractor/extract", extractCORS, Extract(svc, limit, field))
	app.Options("/extractor/extract", extractCORS)

	resultsCORS := middleware.CORS("GET, OPTIONS")
	app.Get("/extractor/results/:id", resultsCORS, GetResults(svc))
	app.Options("/extractor/results/:id", resultsCORS)
}
