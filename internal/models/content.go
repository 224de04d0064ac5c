package models

import (
	"strings"
	"time"
)

// Content age group bounds
const (
	MinContentAge = 3
	MaxContentAge = 20
)

// ContentTypes lists the kinds of content the generator can produce
var ContentTypes = []string{
	"Story",
	"Practice Questions",
	"Simple Explanation",
	"Fun Activities",
	"Learning Games",
}

// Tones lists the writing tones a request may ask for
var Tones = []string{"Formal", "Fun", "Playful", "Academic", "Story-based"}

// Languages lists the languages content can be generated in
var Languages = []string{"English", "Hindi"}

// EducationalContent is a generated piece of teaching material
type EducationalContent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AgeGroup    int       `json:"age_group"`
	Subject     string    `json:"subject"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordID returns the content's identifier
func (c EducationalContent) RecordID() string { return c.ID }

// CanonicalContentType returns the display form of a content type, matched
// case-insensitively
func CanonicalContentType(contentType string) (string, bool) {
	return containsFold(ContentTypes, strings.TrimSpace(contentType))
}

// GenerateRequest is the payload of the content generation function
type GenerateRequest struct {
	AgeGroup           FlexInt `json:"ageGroup"`
	Subject            string  `json:"subject"`
	ContentType        string  `json:"contentType"`
	UserID             string  `json:"userId"`
	Tone               string  `json:"tone,omitempty"`
	Language           string  `json:"language,omitempty"`
	IncludeQuiz        bool    `json:"includeQuiz,omitempty"`
	CustomInstructions string  `json:"customInstructions,omitempty"`
}

// Validate checks a generation request. Messages are shown to users as-is.
func (r GenerateRequest) Validate() error {
	if r.AgeGroup < MinContentAge || r.AgeGroup > MaxContentAge {
		return ValidationError{Field: "ageGroup", Message: "Age group must be a number between 3 and 20"}
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ValidationError{Field: "subject", Message: "Subject is required"}
	}
	if _, ok := CanonicalContentType(r.ContentType); !ok {
		return ValidationError{Field: "contentType", Message: "Content type must be one of: " + strings.Join(ContentTypes, ", ")}
	}
	if r.Tone != "" {
		if _, ok := containsFold(Tones, r.Tone); !ok {
			return ValidationError{Field: "tone", Message: "Tone must be one of: " + strings.Join(Tones, ", ")}
		}
	}
	if r.Language != "" {
		if _, ok := containsFold(Languages, r.Language); !ok {
			return ValidationError{Field: "language", Message: "Language must be one of: " + strings.Join(Languages, ", ")}
		}
	}
	return nil
}

// GenerateResult is the response of the content generation function
type GenerateResult struct {
	Content string `json:"content,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
