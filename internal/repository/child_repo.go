package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"

	"github.com/google/uuid"
)

var childColumns = []string{
	"id", "user_id", "name", "mother_name", "father_name", "aadhaar_number",
	"school_name", "age_group", "location", "tags", "attendance_count",
	"photo_url", "created_at", "updated_at",
}

// ChildRepository handles database operations for children
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

func scanChild(row rowScanner) (*models.Child, error) {
	c := &models.Child{}
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.MotherName,
		&c.FatherName,
		&c.AadhaarNumber,
		&c.SchoolName,
		&c.AgeGroup,
		&c.Location,
		&c.Tags,
		&c.AttendanceCount,
		&c.PhotoURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// List retrieves the owner's children
func (r *ChildRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.Child, error) {
	query, args, err := selectQuery("children", childColumns, userID, opts)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *c)
	}

	return children, rows.Err()
}

// GetByID retrieves one of the owner's children, or nil if absent
func (r *ChildRepository) GetByID(ctx context.Context, userID, id string) (*models.Child, error) {
	children, err := r.List(ctx, userID, ListOptions{Filters: []Filter{{Column: "id", Value: id}}})
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if len(children) == 0 {
		return nil, nil
	}
	return &children[0], nil
}

// Create registers a new child for the owner
func (r *ChildRepository) Create(ctx context.Context, userID string, in models.ChildInput) (*models.Child, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	query := insertQuery("children", childColumns)
	_, err := r.db.ExecContext(ctx, query,
		id, userID, in.Name, in.MotherName, in.FatherName, in.AadhaarNumber,
		in.SchoolName, in.AgeGroup, in.Location, in.Tags, 0,
		in.PhotoURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	return r.mustGet(ctx, userID, id)
}

// Insert writes a child row exactly as given, used by backup restore
func (r *ChildRepository) Insert(ctx context.Context, c models.Child) error {
	_, err := r.db.ExecContext(ctx, insertQuery("children", childColumns),
		c.ID, c.UserID, c.Name, c.MotherName, c.FatherName, c.AadhaarNumber,
		c.SchoolName, c.AgeGroup, c.Location, c.Tags, c.AttendanceCount,
		c.PhotoURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert child %s: %w", c.ID, err)
	}
	return nil
}

// Update applies a partial update to one of the owner's children
func (r *ChildRepository) Update(ctx context.Context, userID, id string, patch models.ChildPatch) (*models.Child, error) {
	query, args, err := updateQuery("children", patch.Columns(), time.Now().UTC(), userID, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.mustGet(ctx, userID, id)
}

// IncrementAttendance atomically adds one to a child's attendance counter
func (r *ChildRepository) IncrementAttendance(ctx context.Context, userID, id string) (*models.Child, error) {
	query := "UPDATE children SET attendance_count = attendance_count + 1, updated_at = ? WHERE id = ? AND user_id = ?"
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment attendance: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.mustGet(ctx, userID, id)
}

// ListAll retrieves every child regardless of owner, used by backup export
func (r *ChildRepository) ListAll(ctx context.Context) ([]models.Child, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+joinColumns(childColumns)+" FROM children ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (r *ChildRepository) mustGet(ctx context.Context, userID, id string) (*models.Child, error) {
	c, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// isNoRows reports whether err means the row was absent
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
