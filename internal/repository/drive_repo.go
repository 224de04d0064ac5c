package repository

import (
	"context"
	"fmt"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"

	"github.com/google/uuid"
)

var driveColumns = []string{
	"id", "user_id", "name", "date", "location", "summary",
	"robin_group_photo_url", "children_group_photo_url", "combined_group_photo_url",
	"items_distributed", "created_at", "updated_at",
}

// DriveRepository handles database operations for drives
type DriveRepository struct {
	db database.DBTX
}

// NewDriveRepository creates a new drive repository
func NewDriveRepository(db database.DBTX) *DriveRepository {
	return &DriveRepository{db: db}
}

func scanDrive(row rowScanner) (*models.Drive, error) {
	d := &models.Drive{}
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Date,
		&d.Location,
		&d.Summary,
		&d.RobinGroupPhotoURL,
		&d.ChildrenGroupPhotoURL,
		&d.CombinedGroupPhotoURL,
		&d.ItemsDistributed,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func (r *DriveRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Drive, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drives: %w", err)
	}
	defer rows.Close()

	drives := []models.Drive{}
	for rows.Next() {
		d, err := scanDrive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drive: %w", err)
		}
		drives = append(drives, *d)
	}
	return drives, rows.Err()
}

// List retrieves the owner's drives
func (r *DriveRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.Drive, error) {
	query, args, err := selectQuery("drives", driveColumns, userID, opts)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

// GetByID retrieves one of the owner's drives, or nil if absent
func (r *DriveRepository) GetByID(ctx context.Context, userID, id string) (*models.Drive, error) {
	drives, err := r.List(ctx, userID, ListOptions{Filters: []Filter{{Column: "id", Value: id}}})
	if err != nil {
		return nil, fmt.Errorf("failed to get drive: %w", err)
	}
	if len(drives) == 0 {
		return nil, nil
	}
	return &drives[0], nil
}

// Create records a new drive for the owner
func (r *DriveRepository) Create(ctx context.Context, userID string, in models.DriveInput) (*models.Drive, error) {
	d := models.Drive{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Name:                  in.Name,
		Date:                  in.Date,
		Location:              in.Location,
		Summary:               in.Summary,
		RobinGroupPhotoURL:    in.RobinGroupPhotoURL,
		ChildrenGroupPhotoURL: in.ChildrenGroupPhotoURL,
		CombinedGroupPhotoURL: in.CombinedGroupPhotoURL,
		ItemsDistributed:      in.ItemsDistributed,
		CreatedAt:             time.Now().UTC(),
	}
	d.UpdatedAt = d.CreatedAt

	if err := r.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create drive: %w", err)
	}

	created, err := r.GetByID(ctx, userID, d.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrNotFound
	}
	return created, nil
}

// Insert writes a drive row exactly as given
func (r *DriveRepository) Insert(ctx context.Context, d models.Drive) error {
	_, err := r.db.ExecContext(ctx, insertQuery("drives", driveColumns),
		d.ID, d.UserID, d.Name, d.Date, d.Location, d.Summary,
		d.RobinGroupPhotoURL, d.ChildrenGroupPhotoURL, d.CombinedGroupPhotoURL,
		d.ItemsDistributed, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert drive %s: %w", d.ID, err)
	}
	return nil
}

// Update applies a partial update to one of the owner's drives
func (r *DriveRepository) Update(ctx context.Context, userID, id string, patch models.DrivePatch) (*models.Drive, error) {
	query, args, err := updateQuery("drives", patch.Columns(), time.Now().UTC(), userID, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update drive: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	d, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// ListAll retrieves every drive regardless of owner, used by backup export
func (r *DriveRepository) ListAll(ctx context.Context) ([]models.Drive, error) {
	return r.query(ctx, "SELECT "+joinColumns(driveColumns)+" FROM drives ORDER BY created_at, id")
}
