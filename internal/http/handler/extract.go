package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"acsgateway/internal/ratelimit"
	"acsgateway/internal/service"
	"acsgateway/internal/validate"
)

// Extract handles POST /extractor/extract: multipart intake, rate limiting,
// validation and the forward to the Analysis Backend all happen in the
// service; the handler only adapts the transport.
//
// limit is the configured per-window budget, echoed in X-RateLimit-Limit.
// field is the multipart field name carrying the uploads.
func Extract(svc service.ExtractorService, limit int, field string) fiber.Handler {
	if field == "" {
		field = "files"
	}
	return func(c *fiber.Ctx) error {
		req := service.ExtractRequest{
			ClientIP:      c.IP(),
			CorrelationID: requestIDFromCtx(c),
		}

		// A missing or malformed multipart body is handled by the service
		// as the no-file case, after rate limiting has been counted.
		if form, err := c.MultipartForm(); err == nil && form != nil {
			req.Candidates = candidatesFromForm(form, field)
		}

		resp, dec, err := svc.Extract(c.UserContext(), req)
		setRateLimitHeaders(c, limit, dec)
		if err != nil {
			return writeFailure(c, err)
		}
		return c.JSON(resp)
	}
}

// candidatesFromForm wraps the named field's parts without reading their
// content.
func candidatesFromForm(form *multipart.Form, field string) []validate.Candidate {
	headers := form.File[field]
	candidates := make([]validate.Candidate, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		candidates = append(candidates, validate.Candidate{
			Name: fh.Filename,
			Size: fh.Size,
			MIME: fh.Header.Get(fiber.HeaderContentType),
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return candidates
}

// setRateLimitHeaders attaches the X-RateLimit-* trio to every extraction
// response, allowed or denied. Reset is ISO-8601 in UTC.
func setRateLimitHeaders(c *fiber.Ctx, limit int, dec ratelimit.Decision) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
	c.Set("X-RateLimit-Reset", dec.ResetAt.UTC().Format(time.RFC3339))
}
