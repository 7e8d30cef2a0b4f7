package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Package model contains the gateway's wire contract. These structs mirror
// the Analysis Backend's payloads field for field; the gateway validates
// them but never reshapes them.

// ACSCodePattern matches certification-standard codes such as "PPT.VII.A.1a".
var ACSCodePattern = regexp.MustCompile(`^[A-Z]+\.[IVX]+\.[A-Z]+\.[0-9]+[a-z]?$`)

// ACSCode is a single certification-standard code extracted from a document.
type ACSCode struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// ExtractionResult holds the per-file outcome of an extraction run.
type ExtractionResult struct {
	Filename        string    `json:"filename"`
	ACSCodes        []ACSCode `json:"acs_codes"`
	ConfidenceScore float64   `json:"confidence_score"`
}

// ExtractResponse is the Analysis Backend's answer to an extraction request.
type ExtractResponse struct {
	ReportID       string             `json:"report_id"`
	TotalFiles     int                `json:"total_files"`
	ProcessedFiles int                `json:"processed_files"`
	ACSCodesFound  *int               `json:"acs_codes_found,omitempty"`
	Results        []ExtractionResult `json:"results"`
	PublicURL      string             `json:"public_url,omitempty"`
}

// PublicReportResponse is the publicly served form of a stored report.
type PublicReportResponse struct {
	ReportID      string             `json:"report_id"`
	CreatedAt     time.Time          `json:"created_at"`
	TotalFiles    int                `json:"total_files"`
	ACSCodesFound *int               `json:"acs_codes_found,omitempty"`
	Results       []ExtractionResult `json:"results"`
}

// IsReportID reports whether s is a well-formed report identifier: a UUID in
// canonical dashed form, case-insensitive. uuid.Parse alone is too permissive
// here (it also takes non-dashed, braced and urn:uuid: forms).
func IsReportID(s string) bool {
	if len(s) != 36 {
		return false
	}
	if _, err := uuid.Parse(s); err != nil {
		return false
	}
	return true
}

// Validate enforces the invariants the gateway promises its callers:
// a UUID report id, 0 <= processed_files <= total_files, confidences in
// [0,1], and a non-negative code count when present.
func (r *ExtractResponse) Validate() error {
	if !IsReportID(r.ReportID) {
		return fmt.Errorf("report_id %q is not a valid UUID", r.ReportID)
	}
	if r.TotalFiles < 0 {
		return fmt.Errorf("total_files is negative: %d", r.TotalFiles)
	}
	if r.ProcessedFiles < 0 || r.ProcessedFiles > r.TotalFiles {
		return fmt.Errorf("processed_files %d out of range [0, %d]", r.ProcessedFiles, r.TotalFiles)
	}
	if r.ACSCodesFound != nil && *r.ACSCodesFound < 0 {
		return fmt.Errorf("acs_codes_found is negative: %d", *r.ACSCodesFound)
	}
	for _, res := range r.Results {
		if err := res.Validate(); err != nil {
			return fmt.Errorf("result %q: %w", res.Filename, err)
		}
	}
	return nil
}

// Validate checks the per-file confidence bounds.
func (r *ExtractionResult) Validate() error {
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		return fmt.Errorf("confidence_score %g out of range [0,1]", r.ConfidenceScore)
	}
	for _, c := range r.ACSCodes {
		if c.Confidence < 0 || c.Confidence > 1 {
			return fmt.Errorf("code %q confidence %g out of range [0,1]", c.Code, c.Confidence)
		}
	}
	return nil
}
