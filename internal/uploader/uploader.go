// Package uploader implements the client-side upload pipeline: validated
// files move through pending -> uploading -> processing -> completed, or land
// in a retryable error state. The orchestrator owns all mutations; callers
// observe state through Files, Stats and the event stream.
package uploader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"acsgateway/internal/model"
	"acsgateway/internal/validate"
)

// Status is a TrackedFile's position in the upload lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// DefaultConcurrency caps simultaneous uploads so a batch does not saturate
// the gateway's rate limiter.
const DefaultConcurrency = 3

// ErrBusy is returned by ClearAll while any file is still in flight.
var ErrBusy = errors.New("uploads in progress")

// ErrNotRetryable is returned by RetryUpload for files not in the error state.
var ErrNotRetryable = errors.New("file is not in a retryable state")

// ErrUnknownFile is returned when an id does not match a tracked file.
var ErrUnknownFile = errors.New("unknown file id")

// TrackedFile is the orchestrator's view of one upload. Progress runs 0-100.
// Result and ReportID are set on completion; Err on failure.
type TrackedFile struct {
	ID        string
	Candidate validate.Candidate
	Status    Status
	Progress  float64
	Result    *model.ExtractionResult
	ReportID  string
	Err       string
}

// Stats aggregates file counts per status.
type Stats struct {
	Total      int
	Pending    int
	Uploading  int
	Processing int
	Completed  int
	Error      int
}

// Event is emitted on every status or progress change. The stream is
// best-effort: if the consumer falls behind, events are dropped rather than
// blocking an upload.
type Event struct {
	FileID   string
	Status   Status
	Progress float64
	Err      string
}

// Transport performs one upload. onProgress receives transfer percentages in
// [0,100]; implementations call it from the upload goroutine only.
type Transport interface {
	Upload(ctx context.Context, c validate.Candidate, onProgress func(float64)) (*model.ExtractResponse, error)
}

type entry struct {
	file   TrackedFile
	cancel context.CancelFunc
}

// Orchestrator coordinates validation, bounded-concurrency uploads, retries
// and removal for a set of tracked files. All methods are safe for
// concurrent use.
type Orchestrator struct {
	mu        sync.Mutex
	transport Transport
	policy    validate.Config

	files map[string]*entry
	order []string

	concurrency int
	perFileTO   time.Duration
	events      chan Event
}

// Option tunes an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency overrides the upload slot cap.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithPerFileTimeout sets a hard deadline per upload. A file whose backend
// call never resolves fails with a timeout instead of sticking in processing.
func WithPerFileTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.perFileTO = d }
}

// New builds an orchestrator that validates incoming files against policy and
// uploads them through t.
func New(t Transport, policy validate.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transport:   t,
		policy:      policy,
		files:       make(map[string]*entry),
		concurrency: DefaultConcurrency,
		events:      make(chan Event, 64),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Events exposes the orchestrator's notification stream.
func (o *Orchestrator) Events() <-chan Event { return o.events }

// AddFiles validates candidates and starts tracking the accepted ones in
// pending state. Rejected candidates are returned with their reasons and are
// never tracked.
func (o *Orchestrator) AddFiles(candidates []validate.Candidate) (accepted []TrackedFile, rejected []validate.Rejection) {
	res := validate.Validate(candidates, o.policy)

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, c := range res.Accepted {
		e := &entry{file: TrackedFile{
			ID:        uuid.New().String(),
			Candidate: c,
			Status:    StatusPending,
		}}
		o.files[e.file.ID] = e
		o.order = append(o.order, e.file.ID)
		accepted = append(accepted, e.file)
	}
	return accepted, res.Rejected
}

// RemoveFile cancels any in-flight transfer for id and stops tracking it.
// Cancellation happens before removal so no upload goroutine mutates a
// removed entry.
func (o *Orchestrator) RemoveFile(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.files[id]
	if !ok {
		return ErrUnknownFile
	}
	if e.cancel != nil {
		e.cancel()
	}
	delete(o.files, id)
	for i, fid := range o.order {
		if fid == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return nil
}

// RetryUpload moves a failed file back to pending. The file re-enters the
// pipeline on the next UploadAll without re-validating.
func (o *Orchestrator) RetryUpload(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.files[id]
	if !ok {
		return ErrUnknownFile
	}
	if e.file.Status != StatusError {
		return ErrNotRetryable
	}
	e.file.Status = StatusPending
	e.file.Progress = 0
	e.file.Err = ""
	o.emitLocked(e)
	return nil
}

// UploadAll uploads every pending file, at most the configured number at a
// time. Per-file failures are recorded on the file, not returned; the only
// error out of UploadAll is ctx cancellation.
func (o *Orchestrator) UploadAll(ctx context.Context) error {
	o.mu.Lock()
	var ids []string
	for _, id := range o.order {
		if e := o.files[id]; e != nil && e.file.Status == StatusPending {
			ids = append(ids, id)
		}
	}
	o.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			o.uploadOne(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ClearAll drops every tracked file. It refuses while any file is uploading
// or processing so cancellations never dangle.
func (o *Orchestrator) ClearAll() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.files {
		if e.file.Status == StatusUploading || e.file.Status == StatusProcessing {
			return ErrBusy
		}
	}
	o.files = make(map[string]*entry)
	o.order = nil
	return nil
}

// Files returns a snapshot of all tracked files in insertion order.
func (o *Orchestrator) Files() []TrackedFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]TrackedFile, 0, len(o.order))
	for _, id := range o.order {
		if e, ok := o.files[id]; ok {
			out = append(out, e.file)
		}
	}
	return out
}

// Stats aggregates the current per-status counts.
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	var s Stats
	for _, e := range o.files {
		s.Total++
		switch e.file.Status {
		case StatusPending:
			s.Pending++
		case StatusUploading:
			s.Uploading++
		case StatusProcessing:
			s.Processing++
		case StatusCompleted:
			s.Completed++
		case StatusError:
			s.Error++
		}
	}
	return s
}

// IsUploading reports whether any file is in flight.
func (o *Orchestrator) IsUploading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.files {
		if e.file.Status == StatusUploading || e.file.Status == StatusProcessing {
			return true
		}
	}
	return false
}

func (o *Orchestrator) uploadOne(ctx context.Context, id string) {
	o.mu.Lock()
	e, ok := o.files[id]
	if !ok || e.file.Status != StatusPending {
		o.mu.Unlock()
		return
	}
	var fctx context.Context
	var cancel context.CancelFunc
	if o.perFileTO > 0 {
		fctx, cancel = context.WithTimeout(ctx, o.perFileTO)
	} else {
		fctx, cancel = context.WithCancel(ctx)
	}
	e.cancel = cancel
	e.file.Status = StatusUploading
	e.file.Progress = 0
	candidate := e.file.Candidate
	o.emitLocked(e)
	o.mu.Unlock()
	defer cancel()

	onProgress := func(pct float64) {
		o.mu.Lock()
		defer o.mu.Unlock()
		e, ok := o.files[id]
		if !ok || e.file.Status == StatusError {
			return
		}
		if pct > 100 {
			pct = 100
		}
		e.file.Progress = pct
		// Transfer complete: the backend is now analyzing.
		if pct >= 100 && e.file.Status == StatusUploading {
			e.file.Status = StatusProcessing
		}
		o.emitLocked(e)
	}

	resp, err := o.transport.Upload(fctx, candidate, onProgress)

	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok = o.files[id]
	if !ok {
		// Removed mid-flight; the cancellation already fired.
		return
	}
	e.cancel = nil
	if err != nil {
		e.file.Status = StatusError
		e.file.Err = err.Error()
		o.emitLocked(e)
		return
	}
	// Per-file ordering: completed is only reachable through processing,
	// even when the transport never reported 100% (zero-size files).
	if e.file.Status == StatusUploading {
		e.file.Status = StatusProcessing
		e.file.Progress = 100
		o.emitLocked(e)
	}
	e.file.Status = StatusCompleted
	e.file.Progress = 100
	e.file.ReportID = resp.ReportID
	e.file.Result = resultFor(resp, candidate.Name)
	o.emitLocked(e)
}

// resultFor picks the per-file result matching name, falling back to the
// first entry for single-file uploads where the backend renames.
func resultFor(resp *model.ExtractResponse, name string) *model.ExtractionResult {
	for i := range resp.Results {
		if resp.Results[i].Filename == name {
			return &resp.Results[i]
		}
	}
	if len(resp.Results) > 0 {
		return &resp.Results[0]
	}
	return nil
}

// emitLocked sends a non-blocking event for e. Callers hold o.mu.
func (o *Orchestrator) emitLocked(e *entry) {
	ev := Event{
		FileID:   e.file.ID,
		Status:   e.file.Status,
		Progress: e.file.Progress,
		Err:      e.file.Err,
	}
	select {
	case o.events <- ev:
	default:
	}
}
