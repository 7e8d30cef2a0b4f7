package uploader

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

	"acsgateway/internal/model"
	"acsgateway/internal/validate"
)

// HTTPTransport uploads one file per request to the extraction gateway.
type HTTPTransport struct {
	endpoint string
	http     *http.Client
}

// NewHTTPTransport builds a transport posting to baseURL's extraction
// endpoint. client may be nil, in which case a client with a 2 minute
// timeout is used so a hung gateway resolves to an error instead of a file
// stuck in processing.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &HTTPTransport{
		endpoint: strings.TrimRight(baseURL, "/") + "/extractor/extract",
		http:     client,
	}
}

// Upload streams the candidate as multipart/form-data (field "files") and
// decodes the gateway's response. onProgress is fed from bytes read off the
// candidate, so 100% means the transfer finished, not that analysis did.
func (t *HTTPTransport) Upload(ctx context.Context, c validate.Candidate, onProgress func(float64)) (*model.ExtractResponse, error) {
	body, err := c.Open()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", c.Name, err)
	}
	defer body.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(c.Name)))
		h.Set("Content-Type", c.MIME)
		part, err := mw.CreatePart(h)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := io.Reader(body)
		if onProgress != nil && c.Size > 0 {
			src = &progressReader{r: body, total: c.Size, onProgress: onProgress}
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", c.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e model.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
			return nil, fmt.Errorf("%s: %s", e.Error, e.Message)
		}
		return nil, fmt.Errorf("upload %q returned %d", c.Name, resp.StatusCode)
	}

	var out model.ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out, nil
}

// progressReader reports cumulative transfer percentage as it is read.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.onProgress(float64(p.read) / float64(p.total) * 100)
	}
	return n, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
