package service

import (
	"context"
	"io"
	"log"

	"acsgateway/internal/backend"
	"acsgateway/internal/config"
	"acsgateway/internal/model"
	"acsgateway/internal/ratelimit"
	"acsgateway/internal/storage"
	"acsgateway/internal/telemetry"
	"acsgateway/internal/validate"
)

// Backend is the slice of the Analysis Backend client the service needs.
type Backend interface {
	Extract(ctx context.Context, req backend.ExtractRequest) (*model.ExtractResponse, error)
	GetReport(ctx context.Context, id string) (*model.PublicReportResponse, error)
}

// ExtractRequest carries one gateway extraction call before validation.
type ExtractRequest struct {
	ClientIP      string
	CorrelationID string
	Candidates    []validate.Candidate
}

// ExtractorService defines the gateway's use cases: forward validated
// uploads for analysis, and republish stored reports.
type ExtractorService interface {
	// Extract runs rate limiting, validation and the backend forward.
	// The returned Decision is populated even on failure so handlers can
	// always attach X-RateLimit-* headers.
	Extract(ctx context.Context, req ExtractRequest) (*model.ExtractResponse, ratelimit.Decision, error)

	// GetReport fetches a previously produced report by id.
	GetReport(ctx context.Context, id string) (*model.PublicReportResponse, error)
}

// extractorService is the concrete implementation of ExtractorService.
type extractorService struct {
	limiter *ratelimit.Limiter
	policy  validate.Config
	backend Backend
	archive storage.Storage // nil disables upload archiving
	sink    telemetry.Sink
}

// NewExtractorService wires the gateway pipeline. archive may be nil.
func NewExtractorService(limiter *ratelimit.Limiter, policy config.ExtractPolicy, b Backend, archive storage.Storage, sink telemetry.Sink) ExtractorService {
	accepted := make(map[string]struct{}, len(policy.AcceptedTypes))
	for _, t := range policy.AcceptedTypes {
		accepted[t] = struct{}{}
	}
	if sink == nil {
		sink = telemetry.Noop{}
	}
	return &extractorService{
		limiter: limiter,
		policy: validate.Config{
			MaxFiles:       policy.MaxFiles,
			MaxSizePerFile: policy.MaxSizePerFile,
			AcceptedTypes:  accepted,
			RequiredField:  policy.RequiredField,
		},
		backend: b,
		archive: archive,
		sink:    sink,
	}
}

func (s *extractorService) Extract(ctx context.Context, req ExtractRequest) (*model.ExtractResponse, ratelimit.Decision, error) {
	s.record(telemetry.EventExtractionStarted, req, map[string]any{
		"file_count": len(req.Candidates),
	})

	// Rate limit first: a denied caller never reaches validation or the
	// Analysis Backend.
	dec := s.limiter.Check(ctx, req.ClientIP)
	if !dec.Allowed {
		err := rateLimitedFailure()
		s.recordFailure(req, err)
		return nil, dec, err
	}

	if len(req.Candidates) == 0 {
		err := noFileFailure()
		s.recordFailure(req, err)
		return nil, dec, err
	}

	// The gateway is all-or-nothing: one bad file fails the request rather
	// than silently forwarding a subset.
	res := validate.Validate(req.Candidates, s.policy)
	if len(res.Rejected) > 0 {
		err := s.rejectionFailure(res.Rejected[0])
		s.recordFailure(req, err)
		return nil, dec, err
	}

	archived := s.archiveUploads(ctx, req.CorrelationID, res.Accepted)

	files, closers, err := openAll(res.Accepted)
	if err != nil {
		f := internalFailure("open_upload")
		s.recordFailure(req, f)
		return nil, dec, f
	}
	defer closeAll(closers)

	resp, err := s.backend.Extract(ctx, backend.ExtractRequest{
		CorrelationID: req.CorrelationID,
		ClientIP:      req.ClientIP,
		Files:         files,
	})
	if err != nil {
		log.Printf("extraction %s: backend call failed: %v", req.CorrelationID, err)
		s.discardArchive(ctx, req.CorrelationID, archived)
		f := internalFailure(string(backend.KindOf(err)))
		s.recordFailure(req, f)
		return nil, dec, f
	}

	// Pass-through contract: the payload is validated, never reshaped.
	if err := resp.Validate(); err != nil {
		log.Printf("extraction %s: backend payload violates contract: %v", req.CorrelationID, err)
		s.discardArchive(ctx, req.CorrelationID, archived)
		f := internalFailure(string(backend.KindBadPayload))
		s.recordFailure(req, f)
		return nil, dec, f
	}

	s.record(telemetry.EventExtractionCompleted, req, map[string]any{
		"file_count":      len(res.Accepted),
		"processed_files": resp.ProcessedFiles,
	})
	return resp, dec, nil
}

func (s *extractorService) GetReport(ctx context.Context, id string) (*model.PublicReportResponse, error) {
	// A malformed id can never name a report; answer 404 without a round
	// trip to the backend.
	if !model.IsReportID(id) {
		s.sink.Record(telemetry.EventReportFetchFailed, map[string]any{"resource_id": id})
		return nil, notFoundFailure(id)
	}

	rep, err := s.backend.GetReport(ctx, id)
	if err != nil {
		s.sink.Record(telemetry.EventReportFetchFailed, map[string]any{"resource_id": id})
		if backend.IsNotFound(err) {
			return nil, notFoundFailure(id)
		}
		log.Printf("report %s: backend call failed: %v", id, err)
		return nil, internalFailure(string(backend.KindOf(err)))
	}

	s.sink.Record(telemetry.EventReportFetched, map[string]any{"resource_id": id})
	return rep, nil
}

// archiveUploads retains accepted files best-effort and returns the keys
// that were actually stored. Failures are logged and never influence the
// extraction outcome.
func (s *extractorService) archiveUploads(ctx context.Context, correlationID string, accepted []validate.Candidate) []string {
	if s.archive == nil {
		return nil
	}
	var keys []string
	for _, c := range accepted {
		rc, err := c.Open()
		if err != nil {
			log.Printf("extraction %s: archive open %q: %v", correlationID, c.Name, err)
			continue
		}
		key := storage.ArchiveKey(correlationID, c.Name)
		_, err = s.archive.Put(ctx, key, rc, storage.PutObjectOptions{
			Size:        c.Size,
			ContentType: c.MIME,
			Metadata:    map[string]string{"correlation-id": correlationID},
		})
		rc.Close()
		if err != nil {
			log.Printf("extraction %s: archive put %q: %v", correlationID, c.Name, err)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// discardArchive drops archived uploads after a failed run: the archive only
// retains files from extractions that produced a report. Best-effort, like
// the writes.
func (s *extractorService) discardArchive(ctx context.Context, correlationID string, keys []string) {
	if s.archive == nil {
		return
	}
	for _, key := range keys {
		if err := s.archive.Delete(ctx, key); err != nil {
			log.Printf("extraction %s: archive delete %q: %v", correlationID, key, err)
		}
	}
}

func (s *extractorService) rejectionFailure(r validate.Rejection) *Failure {
	switch r.Reason {
	case validate.ReasonTooLarge:
		return fileTooLargeFailure(r.Candidate.Name, r.Candidate.Size, s.policy.MaxSizePerFile)
	case validate.ReasonUnsupportedType:
		return unsupportedTypeFailure(r.Candidate.Name, r.Candidate.MIME)
	default:
		return validationFailure(r.Detail)
	}
}

func (s *extractorService) record(event string, req ExtractRequest, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	props["correlation_id"] = req.CorrelationID
	s.sink.Record(event, props)
}

func (s *extractorService) recordFailure(req ExtractRequest, f *Failure) {
	s.record(telemetry.EventExtractionFailed, req, map[string]any{
		"file_count": len(req.Candidates),
		"error":      f.Code,
	})
}

func openAll(candidates []validate.Candidate) ([]backend.File, []io.Closer, error) {
	files := make([]backend.File, 0, len(candidates))
	closers := make([]io.Closer, 0, len(candidates))
	for _, c := range candidates {
		rc, err := c.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, rc)
		files = append(files, backend.File{Name: c.Name, ContentType: c.MIME, Content: rc})
	}
	return files, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
