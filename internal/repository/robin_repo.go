package repository

import (
	"context"
	"fmt"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"

	"github.com/google/uuid"
)

var robinColumns = []string{
	"id", "user_id", "name", "assigned_location", "home_location", "assigned_date",
	"drive_count", "status", "email", "phone", "emergency_contact", "skills",
	"availability_preferences", "registration_completed", "profile_created_by",
	"photo_url", "created_at", "updated_at",
}

// RobinRepository handles database operations for robins
type RobinRepository struct {
	db database.DBTX
}

// NewRobinRepository creates a new robin repository
func NewRobinRepository(db database.DBTX) *RobinRepository {
	return &RobinRepository{db: db}
}

func scanRobin(row rowScanner) (*models.Robin, error) {
	r := &models.Robin{}
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Name,
		&r.AssignedLocation,
		&r.HomeLocation,
		&r.AssignedDate,
		&r.DriveCount,
		&r.Status,
		&r.Email,
		&r.Phone,
		&r.EmergencyContact,
		&r.Skills,
		&r.AvailabilityPreferences,
		&r.RegistrationCompleted,
		&r.ProfileCreatedBy,
		&r.PhotoURL,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (r *RobinRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Robin, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query robins: %w", err)
	}
	defer rows.Close()

	robins := []models.Robin{}
	for rows.Next() {
		robin, err := scanRobin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan robin: %w", err)
		}
		robins = append(robins, *robin)
	}
	return robins, rows.Err()
}

// List retrieves the owner's robins
func (r *RobinRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.Robin, error) {
	query, args, err := selectQuery("robins", robinColumns, userID, opts)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

// GetByID retrieves one of the owner's robins, or nil if absent
func (r *RobinRepository) GetByID(ctx context.Context, userID, id string) (*models.Robin, error) {
	robins, err := r.List(ctx, userID, ListOptions{Filters: []Filter{{Column: "id", Value: id}}})
	if err != nil {
		return nil, fmt.Errorf("failed to get robin: %w", err)
	}
	if len(robins) == 0 {
		return nil, nil
	}
	return &robins[0], nil
}

// FindByID retrieves a robin regardless of owner, or nil if absent
func (r *RobinRepository) FindByID(ctx context.Context, id string) (*models.Robin, error) {
	query := "SELECT " + joinColumns(robinColumns) + " FROM robins WHERE id = ?"
	robin, err := scanRobin(r.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get robin: %w", err)
	}
	return robin, nil
}

// Create registers a new robin for the owner
func (r *RobinRepository) Create(ctx context.Context, userID string, in models.RobinInput) (*models.Robin, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, insertQuery("robins", robinColumns),
		id, userID, in.Name, in.AssignedLocation, in.HomeLocation, in.AssignedDate,
		in.DriveCount, in.Status, in.Email, in.Phone, in.EmergencyContact, in.Skills,
		nil, in.RegistrationCompleted, in.ProfileCreatedBy,
		in.PhotoURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create robin: %w", err)
	}

	return r.mustGet(ctx, userID, id)
}

// Insert writes a robin row exactly as given, used by backup restore
func (r *RobinRepository) Insert(ctx context.Context, rb models.Robin) error {
	_, err := r.db.ExecContext(ctx, insertQuery("robins", robinColumns),
		rb.ID, rb.UserID, rb.Name, rb.AssignedLocation, rb.HomeLocation, rb.AssignedDate,
		rb.DriveCount, rb.Status, rb.Email, rb.Phone, rb.EmergencyContact, rb.Skills,
		rb.AvailabilityPreferences, rb.RegistrationCompleted, rb.ProfileCreatedBy,
		rb.PhotoURL, rb.CreatedAt, rb.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert robin %s: %w", rb.ID, err)
	}
	return nil
}

// Update applies a partial update to one of the owner's robins
func (r *RobinRepository) Update(ctx context.Context, userID, id string, patch models.RobinPatch) (*models.Robin, error) {
	query, args, err := updateQuery("robins", patch.Columns(), time.Now().UTC(), userID, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update robin: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.mustGet(ctx, userID, id)
}

// IncrementDriveCount atomically adds one to a robin's drive counter
func (r *RobinRepository) IncrementDriveCount(ctx context.Context, userID, id string) (*models.Robin, error) {
	query := "UPDATE robins SET drive_count = drive_count + 1, updated_at = ? WHERE id = ? AND user_id = ?"
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment drive count: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.mustGet(ctx, userID, id)
}

// SetInitialDriveCount sets the drives a robin attended before joining. It
// only applies while the robin has no drives counted and no participation
// rows, so recorded drives are never overwritten.
func (r *RobinRepository) SetInitialDriveCount(ctx context.Context, userID, id string, count int) (*models.Robin, error) {
	query := `UPDATE robins SET drive_count = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND drive_count = 0
		AND NOT EXISTS (SELECT 1 FROM robin_drives WHERE robin_drives.robin_id = ?)`
	result, err := r.db.ExecContext(ctx, query, count, time.Now().UTC(), id, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to set initial drive count: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		robin, err := r.GetByID(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if robin == nil {
			return nil, ErrNotFound
		}
		return nil, ErrDriveCountSet
	}

	return r.mustGet(ctx, userID, id)
}

// ListAssignedOn retrieves active robins of every owner assigned on date
func (r *RobinRepository) ListAssignedOn(ctx context.Context, date string) ([]models.Robin, error) {
	query := "SELECT " + joinColumns(robinColumns) + " FROM robins WHERE assigned_date = ? AND status = ? ORDER BY name, id"
	return r.query(ctx, query, date, models.RobinActive)
}

// ListAll retrieves every robin regardless of owner, used by backup export
func (r *RobinRepository) ListAll(ctx context.Context) ([]models.Robin, error) {
	return r.query(ctx, "SELECT "+joinColumns(robinColumns)+" FROM robins ORDER BY created_at, id")
}

func (r *RobinRepository) mustGet(ctx context.Context, userID, id string) (*models.Robin, error) {
	robin, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if robin == nil {
		return nil, ErrNotFound
	}
	return robin, nil
}
