package dto

import "github.com/sahasp/interntrack/internal/app/models"

// TranscriptResponse is the API shape of a computed transcript. It mirrors
// the Transcript value object exactly; the PDF composer consumes the same
// value, so both outputs always agree.
type TranscriptResponse struct {
	Student      models.TranscriptStudent `json:"student"`
	LineItems    []models.TranscriptLine  `json:"lineItems"`
	TotalCredits int                      `json:"totalCredits"`
}

// NewTranscriptResponse converts a transcript value to its API shape.
func NewTranscriptResponse(t *models.Transcript) TranscriptResponse {
	return TranscriptResponse{
		Student:      t.Student,
		LineItems:    t.LineItems,
		TotalCredits: t.TotalCredits,
	}
}
