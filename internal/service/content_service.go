package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
	"robinhoodarmy/internal/repository"
)

// Messages returned to callers of the content generation function
const (
	msgConstraintViolation = "Data validation failed. Please check age group, subject, and content type values."
	msgSaveFailed          = "Failed to save content to database"
	msgGenerationFailed    = "Content generation failed"
)

// ErrUserMismatch is returned when a request names a user other than the caller
var ErrUserMismatch = errors.New("userId does not match the authenticated user")

// ContentError is a failure of the generation function. Message is returned
// to the caller verbatim.
type ContentError struct {
	Message string
	Err     error
}

func (e *ContentError) Error() string {
	return e.Message
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// ContentService generates educational content and stores it for the caller
type ContentService struct {
	content   *repository.ContentRepository
	dialect   database.Dialect
	generator TextGenerator
	publisher realtime.Publisher
	debug     bool
}

// NewContentService creates a new content service
func NewContentService(db database.DBTX, generator TextGenerator, publisher realtime.Publisher, debug bool) *ContentService {
	return &ContentService{
		content:   repository.NewContentRepository(db),
		dialect:   db.GetDialect(),
		generator: generator,
		publisher: publisher,
		debug:     debug,
	}
}

// Generate validates the request, asks the generator for content and stores it
func (s *ContentService) Generate(ctx context.Context, userID string, req models.GenerateRequest) (*models.EducationalContent, error) {
	if s.debug {
		log.Printf("[DEBUG] generate-content request: user=%s, ageGroup=%d, subject=%q, contentType=%q, tone=%q, language=%q, quiz=%t",
			userID, req.AgeGroup, req.Subject, req.ContentType, req.Tone, req.Language, req.IncludeQuiz)
	}

	if err := req.Validate(); err != nil {
		var verr models.ValidationError
		if errors.As(err, &verr) {
			return nil, &ContentError{Message: verr.Message, Err: err}
		}
		return nil, &ContentError{Message: err.Error(), Err: err}
	}
	if req.UserID != "" && req.UserID != userID {
		return nil, &ContentError{Message: ErrUserMismatch.Error(), Err: ErrUserMismatch}
	}

	prompt := BuildPrompt(req)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Content generation failed: %v", err)
		return nil, &ContentError{Message: fmt.Sprintf("%s: %v", msgGenerationFailed, err), Err: err}
	}

	contentType, _ := models.CanonicalContentType(req.ContentType)
	item, err := s.content.Create(ctx, userID, int(req.AgeGroup), strings.TrimSpace(req.Subject), contentType, text)
	if err != nil {
		log.Printf("Database error saving content: %v", err)
		return nil, s.saveError(err)
	}

	if s.publisher != nil {
		s.publisher.Publish(models.TableEducationalContent, userID, realtime.EventInsert, item)
	}
	return item, nil
}

// saveError maps a database failure to the message shown to the caller
func (s *ContentService) saveError(err error) *ContentError {
	if database.IsConstraint(s.dialect, err, database.CheckViolation) {
		return &ContentError{Message: msgConstraintViolation, Err: err}
	}
	return &ContentError{Message: msgSaveFailed, Err: err}
}

// BuildPrompt renders the generation prompt for a request
func BuildPrompt(req models.GenerateRequest) string {
	age := int(req.AgeGroup)
	subject := strings.TrimSpace(req.Subject)
	base := fmt.Sprintf("Create educational content for %d-year-old children about %s.", age, subject)

	var body string
	switch strings.ToLower(strings.TrimSpace(req.ContentType)) {
	case "story":
		body = fmt.Sprintf("Write an engaging, age-appropriate story that teaches key concepts in %s. The story should be fun, include relatable characters, and help children understand the subject better. Keep it around 200-300 words.", subject)
	case "practice questions":
		body = fmt.Sprintf("Create 5 practice questions that are appropriate for %d-year-old children learning %s. Include a mix of easy and slightly challenging questions. Format them as a numbered list.", age, subject)
	case "simple explanation":
		body = fmt.Sprintf("Provide a simple, clear explanation of basic %s concepts that %d-year-old children can easily understand. Use everyday examples and simple language. Keep it around 150-200 words.", subject, age)
	case "fun activities":
		body = fmt.Sprintf("Suggest 5 fun, hands-on activities that %d-year-old children can do to learn %s. Include materials needed and simple instructions. Make them engaging and interactive.", age, subject)
	case "learning games":
		body = fmt.Sprintf("Design 3-5 educational games that teach %s concepts to %d-year-old children. Include game rules, objectives, and how they help with learning. Make them fun and easy to understand.", subject, age)
	default:
		body = fmt.Sprintf("Create helpful educational content about %s that is appropriate and engaging for %d-year-old children.", subject, age)
	}

	parts := []string{base, body}
	if req.Tone != "" {
		parts = append(parts, fmt.Sprintf("Use a %s tone.", strings.ToLower(req.Tone)))
	}
	if req.Language != "" && !strings.EqualFold(req.Language, "English") {
		parts = append(parts, fmt.Sprintf("Write the content in %s.", req.Language))
	}
	if req.IncludeQuiz {
		parts = append(parts, "End with a short quiz of 3 questions with answers.")
	}
	if custom := strings.TrimSpace(req.CustomInstructions); custom != "" {
		parts = append(parts, "Additional instructions: "+custom)
	}
	return strings.Join(parts, " ")
}
