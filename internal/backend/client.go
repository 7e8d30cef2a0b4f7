package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"acsgateway/internal/config"
	"acsgateway/internal/model"
)

// Headers forwarded to the Analysis Backend on every call.
const (
	correlationHeader  = "X-Correlation-ID"
	forwardedForHeader = "X-Forwarded-For"
	publicAccessHeader = "X-Public-Access"
)

// File is one document forwarded for analysis. Content is streamed, never
// buffered whole.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// ExtractRequest carries everything the backend needs for one extraction run.
type ExtractRequest struct {
	CorrelationID string
	ClientIP      string
	Files         []File
}

// Client talks to the Analysis Backend over HTTP. It is safe for concurrent
// use by multiple goroutines.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a backend client with the configured timeout and an
// OpenTelemetry-instrumented transport.
func NewClient(cfg config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Extract forwards validated files as multipart/form-data (field "files")
// and returns the backend's response verbatim.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*model.ExtractResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		for _, f := range req.Files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Name)))
			h.Set("Content-Type", f.ContentType)
			part, err := mw.CreatePart(h)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, f.Content); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", pr)
	if err != nil {
		return nil, newError(KindUnavailable, 0, "build extract request", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set(correlationHeader, req.CorrelationID)
	if req.ClientIP != "" {
		httpReq.Header.Set(forwardedForHeader, req.ClientIP)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, newError(KindUnavailable, 0, "extract request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little for the error message; never leaked to clients.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, newError(KindBadStatus, resp.StatusCode,
			fmt.Sprintf("extract returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	var out model.ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newError(KindBadPayload, resp.StatusCode, "decode extract response", err)
	}
	return &out, nil
}

// GetReport fetches a previously produced report. The report endpoint is
// deliberately public, which the X-Public-Access header signals downstream.
func (c *Client) GetReport(ctx context.Context, id string) (*model.PublicReportResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reports/"+id, nil)
	if err != nil {
		return nil, newError(KindUnavailable, 0, "build report request", err)
	}
	httpReq.Header.Set(publicAccessHeader, "true")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, newError(KindUnavailable, 0, "report request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, newError(KindNotFound, resp.StatusCode, "report "+id+" not found", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, newError(KindBadStatus, resp.StatusCode,
			fmt.Sprintf("report fetch returned %d", resp.StatusCode), nil)
	}

	var out model.PublicReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newError(KindBadPayload, resp.StatusCode, "decode report response", err)
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
