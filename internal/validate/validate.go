package validate

import (
	"fmt"
	"io"
)

// Package validate implements the file-intake policy shared by the
// server-side extraction gateway and the client-side upload orchestrator.
// Validation is pure: same candidates and config always produce the same
// result, and no candidate is opened.

// Candidate wraps a raw file plus the metadata the policy needs. Open
// provides the content lazily so validation never touches the bytes.
type Candidate struct {
	Name string
	Size int64
	MIME string
	Open func() (io.ReadCloser, error)
}

// Config holds the intake policy tunables.
type Config struct {
	MaxFiles       int
	MaxSizePerFile int64
	AcceptedTypes  map[string]struct{}
	// RequiredField is the multipart field name the server expects.
	RequiredField string
}

// Rejection reason codes.
const (
	ReasonUnsupportedType = "unsupported_type"
	ReasonTooLarge        = "too_large"
	ReasonTooMany         = "too_many"
)

// Rejection pairs a refused candidate with the reason it was refused.
type Rejection struct {
	Candidate Candidate
	Reason    string
	Detail    string
}

// Result partitions candidates into accepted and rejected sets.
type Result struct {
	Accepted []Candidate
	Rejected []Rejection
}

// Validate applies per-file type and size checks, then trims accepted
// candidates that exceed the count cap. Order is stable: earliest-added
// candidates win the remaining slots.
func Validate(candidates []Candidate, cfg Config) Result {
	var res Result
	for _, c := range candidates {
		if _, ok := cfg.AcceptedTypes[c.MIME]; !ok {
			res.Rejected = append(res.Rejected, Rejection{
				Candidate: c,
				Reason:    ReasonUnsupportedType,
				Detail:    fmt.Sprintf("type %q is not accepted", c.MIME),
			})
			continue
		}
		if cfg.MaxSizePerFile > 0 && c.Size > cfg.MaxSizePerFile {
			res.Rejected = append(res.Rejected, Rejection{
				Candidate: c,
				Reason:    ReasonTooLarge,
				Detail:    fmt.Sprintf("size %d exceeds limit of %d bytes", c.Size, cfg.MaxSizePerFile),
			})
			continue
		}
		res.Accepted = append(res.Accepted, c)
	}

	if cfg.MaxFiles > 0 && len(res.Accepted) > cfg.MaxFiles {
		for _, c := range res.Accepted[cfg.MaxFiles:] {
			res.Rejected = append(res.Rejected, Rejection{
				Candidate: c,
				Reason:    ReasonTooMany,
				Detail:    fmt.Sprintf("at most %d files per request", cfg.MaxFiles),
			})
		}
		res.Accepted = res.Accepted[:cfg.MaxFiles]
	}

	return res
}
