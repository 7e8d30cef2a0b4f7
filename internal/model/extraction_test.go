package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestACSCodePattern(t *testing.T) {
	valid := []string{"PPT.VII.A.1a", "PA.I.B.2", "CA.IX.C.10", "UA.V.E.4b"}
	for _, code := range valid {
		assert.True(t, ACSCodePattern.MatchString(code), "expected %q to match", code)
	}

	invalid := []string{"ppt.vii.a.1", "PPT.VII.A", "PPT-VII-A-1", "PPT.VII.A.", "PPT.VII.A.1A", ""}
	for _, code := range invalid {
		assert.False(t, ACSCodePattern.MatchString(code), "expected %q not to match", code)
	}
}

func TestIsReportID(t *testing.T) {
	assert.True(t, IsReportID("123e4567-e89b-12d3-a456-426614174000"))
	assert.True(t, IsReportID("123E4567-E89B-12D3-A456-426614174000"))
	assert.False(t, IsReportID("not-a-uuid"))
	assert.False(t, IsReportID(""))
	assert.False(t, IsReportID("123e4567-e89b-12d3-a456"))

	// Alternate UUID encodings are not report ids: only the canonical
	// dashed form names a report.
	assert.False(t, IsReportID("123e4567e89b12d3a456426614174000"))
	assert.False(t, IsReportID("{123e4567-e89b-12d3-a456-426614174000}"))
	assert.False(t, IsReportID("urn:uuid:123e4567-e89b-12d3-a456-426614174000"))
}

func TestExtractResponseValidate(t *testing.T) {
	found := 2
	base := func() ExtractResponse {
		return ExtractResponse{
			ReportID:       "123e4567-e89b-12d3-a456-426614174000",
			TotalFiles:     2,
			ProcessedFiles: 2,
			ACSCodesFound:  &found,
			Results: []ExtractionResult{
				{
					Filename:        "checkride.pdf",
					ConfidenceScore: 0.93,
					ACSCodes: []ACSCode{
						{Code: "PA.I.B.2", Description: "Airworthiness requirements", Confidence: 0.91},
					},
				},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ExtractResponse)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ExtractResponse) {}},
		{name: "bad report id", mutate: func(r *ExtractResponse) { r.ReportID = "nope" }, wantErr: true},
		{name: "non-dashed report id", mutate: func(r *ExtractResponse) { r.ReportID = "123e4567e89b12d3a456426614174000" }, wantErr: true},
		{name: "processed exceeds total", mutate: func(r *ExtractResponse) { r.ProcessedFiles = 3 }, wantErr: true},
		{name: "negative processed", mutate: func(r *ExtractResponse) { r.ProcessedFiles = -1 }, wantErr: true},
		{name: "negative total", mutate: func(r *ExtractResponse) { r.TotalFiles = -1 }, wantErr: true},
		{name: "negative codes found", mutate: func(r *ExtractResponse) { n := -1; r.ACSCodesFound = &n }, wantErr: true},
		{name: "confidence score above one", mutate: func(r *ExtractResponse) { r.Results[0].ConfidenceScore = 1.2 }, wantErr: true},
		{name: "code confidence below zero", mutate: func(r *ExtractResponse) { r.Results[0].ACSCodes[0].Confidence = -0.1 }, wantErr: true},
		{name: "zero files", mutate: func(r *ExtractResponse) {
			r.TotalFiles = 0
			r.ProcessedFiles = 0
			r.Results = nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
