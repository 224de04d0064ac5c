package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"

	"github.com/google/uuid"
)

var contentColumns = []string{
	"id", "user_id", "age_group", "subject", "content_type", "content", "created_at",
}

// ContentRepository handles database operations for generated content
type ContentRepository struct {
	db database.DBTX
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

// List retrieves the owner's generated content
func (r *ContentRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.EducationalContent, error) {
	query, args, err := selectQuery("educational_content", contentColumns, userID, opts)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

// ListAll retrieves every content row, used by backup export
func (r *ContentRepository) ListAll(ctx context.Context) ([]models.EducationalContent, error) {
	return r.query(ctx, "SELECT "+joinColumns(contentColumns)+" FROM educational_content ORDER BY created_at, id")
}

func (r *ContentRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.EducationalContent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	items := []models.EducationalContent{}
	for rows.Next() {
		var c models.EducationalContent
		if err := rows.Scan(&c.ID, &c.UserID, &c.AgeGroup, &c.Subject, &c.ContentType, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create stores generated content. The content type is stored lowercased.
func (r *ContentRepository) Create(ctx context.Context, userID string, ageGroup int, subject, contentType, body string) (*models.EducationalContent, error) {
	c := models.EducationalContent{
		ID:          uuid.NewString(),
		UserID:      userID,
		AgeGroup:    ageGroup,
		Subject:     subject,
		ContentType: strings.ToLower(contentType),
		Content:     body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.Insert(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert writes a content row exactly as given
func (r *ContentRepository) Insert(ctx context.Context, c models.EducationalContent) error {
	_, err := r.db.ExecContext(ctx, insertQuery("educational_content", contentColumns),
		c.ID, c.UserID, c.AgeGroup, c.Subject, c.ContentType, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}
	return nil
}
