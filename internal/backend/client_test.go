package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acsgateway/internal/config"
	"acsgateway/internal/model"
)

func newTestClient(url string) *Client {
	return NewClient(config.BackendConfig{BaseURL: url, Timeout: 5 * time.Second})
}

func TestClientExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards multipart and headers, passes response through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/extract", r.URL.Path)
			assert.Equal(t, "corr-123", r.Header.Get("X-Correlation-ID"))
			assert.Equal(t, "1.2.3.4", r.Header.Get("X-Forwarded-For"))

			require.NoError(t, r.ParseMultipartForm(32<<20))
			files := r.MultipartForm.File["files"]
			require.Len(t, files, 2)
			assert.Equal(t, "a.pdf", files[0].Filename)
			assert.Equal(t, "application/pdf", files[0].Header.Get("Content-Type"))
			assert.Equal(t, "b.png", files[1].Filename)

			json.NewEncoder(w).Encode(model.ExtractResponse{
				ReportID:       "123e4567-e89b-12d3-a456-426614174000",
				TotalFiles:     2,
				ProcessedFiles: 2,
				Results: []model.ExtractionResult{
					{Filename: "a.pdf", ConfidenceScore: 0.9},
					{Filename: "b.png", ConfidenceScore: 0.8},
				},
			})
		}))
		defer srv.Close()

		resp, err := newTestClient(srv.URL).Extract(ctx, ExtractRequest{
			CorrelationID: "corr-123",
			ClientIP:      "1.2.3.4",
			Files: []File{
				{Name: "a.pdf", ContentType: "application/pdf", Content: strings.NewReader("%PDF-1.4")},
				{Name: "b.png", ContentType: "image/png", Content: strings.NewReader("\x89PNG")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", resp.ReportID)
		assert.Equal(t, 2, resp.ProcessedFiles)
		assert.Len(t, resp.Results, 2)
	})

	t.Run("non-2xx maps to bad_status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Extract(ctx, ExtractRequest{CorrelationID: "c"})

		require.Error(t, err)
		assert.Equal(t, KindBadStatus, KindOf(err))
	})

	t.Run("unreachable backend maps to unavailable", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").Extract(ctx, ExtractRequest{CorrelationID: "c"})

		require.Error(t, err)
		assert.Equal(t, KindUnavailable, KindOf(err))
	})

	t.Run("malformed body maps to bad_payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Extract(ctx, ExtractRequest{CorrelationID: "c"})

		require.Error(t, err)
		assert.Equal(t, KindBadPayload, KindOf(err))
	})
}

func TestClientGetReport(t *testing.T) {
	ctx := context.Background()

	t.Run("sets public access header and decodes report", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/reports/123e4567-e89b-12d3-a456-426614174000", r.URL.Path)
			assert.Equal(t, "true", r.Header.Get("X-Public-Access"))

			json.NewEncoder(w).Encode(model.PublicReportResponse{
				ReportID:   "123e4567-e89b-12d3-a456-426614174000",
				CreatedAt:  time.Now().UTC(),
				TotalFiles: 1,
			})
		}))
		defer srv.Close()

		rep, err := newTestClient(srv.URL).GetReport(ctx, "123e4567-e89b-12d3-a456-426614174000")

		require.NoError(t, err)
		assert.Equal(t, 1, rep.TotalFiles)
	})

	t.Run("backend 404 maps to not_found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetReport(ctx, "missing")

		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("backend 500 maps to bad_status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetReport(ctx, "id")

		require.Error(t, err)
		assert.False(t, IsNotFound(err))
		assert.Equal(t, KindBadStatus, KindOf(err))
	})
}

func TestKindOfUnknownError(t *testing.T) {
	assert.Equal(t, KindUnavailable, KindOf(assert.AnError))
}
