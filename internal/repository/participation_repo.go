package repository

import (
	"context"
	"fmt"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"

	"github.com/google/uuid"
)

var (
	attendanceColumns = []string{
		"id", "user_id", "child_id", "date", "location", "drive_id", "created_at",
	}
	robinDriveColumns = []string{
		"id", "user_id", "robin_id", "date", "location", "drive_id", "commute_method",
		"contribution_message", "items_brought", "attendance_marked", "created_at",
	}
	unavailabilityColumns = []string{
		"id", "user_id", "robin_id", "unavailable_date", "reason", "created_at",
	}
)

// AttendanceRepository handles database operations for child attendance records
type AttendanceRepository struct {
	db database.DBTX
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db database.DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List retrieves the owner's attendance records
func (r *AttendanceRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.ChildAttendance, error) {
	query, args, err := selectQuery("child_attendance", attendanceColumns, userID, opts)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

// ListAll retrieves every attendance record, used by backup export
func (r *AttendanceRepository) ListAll(ctx context.Context) ([]models.ChildAttendance, error) {
	return r.query(ctx, "SELECT "+joinColumns(attendanceColumns)+" FROM child_attendance ORDER BY created_at, id")
}

func (r *AttendanceRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.ChildAttendance, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	records := []models.ChildAttendance{}
	for rows.Next() {
		var a models.ChildAttendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.ChildID, &a.Date, &a.Location, &a.DriveID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// Create marks a child present for the owner
func (r *AttendanceRepository) Create(ctx context.Context, userID string, in models.AttendanceInput) (*models.ChildAttendance, error) {
	a := models.ChildAttendance{
		ID:        uuid.NewString(),
		UserID:    userID,
		ChildID:   in.ChildID,
		Date:      in.Date,
		Location:  in.Location,
		DriveID:   in.DriveID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}
	return &a, nil
}

// Insert writes an attendance row exactly as given
func (r *AttendanceRepository) Insert(ctx context.Context, a models.ChildAttendance) error {
	_, err := r.db.ExecContext(ctx, insertQuery("child_attendance", attendanceColumns),
		a.ID, a.UserID, a.ChildID, a.Date, a.Location, a.DriveID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert attendance %s: %w", a.ID, err)
	}
	return nil
}

// RobinDriveRepository handles database operations for robin drive participation
type RobinDriveRepository struct {
	db database.DBTX
}

// NewRobinDriveRepository creates a new robin drive repository
func NewRobinDriveRepository(db database.DBTX) *RobinDriveRepository {
	return &RobinDriveRepository{db: db}
}

// List retrieves the owner's participation records
func (r *RobinDriveRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.RobinDrive, error) {
	query, args, err := selectQuery("robin_drives", robinDriveColumns, userID, opts)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

// ListAll retrieves every participation record, used by backup export
func (r *RobinDriveRepository) ListAll(ctx context.Context) ([]models.RobinDrive, error) {
	return r.query(ctx, "SELECT "+joinColumns(robinDriveColumns)+" FROM robin_drives ORDER BY created_at, id")
}

func (r *RobinDriveRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.RobinDrive, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query robin drives: %w", err)
	}
	defer rows.Close()

	records := []models.RobinDrive{}
	for rows.Next() {
		var d models.RobinDrive
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.RobinID,
			&d.Date,
			&d.Location,
			&d.DriveID,
			&d.CommuteMethod,
			&d.ContributionMessage,
			&d.ItemsBrought,
			&d.AttendanceMarked,
			&d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan robin drive: %w", err)
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

// Create records a robin's participation for the owner
func (r *RobinDriveRepository) Create(ctx context.Context, userID string, in models.DriveParticipationInput) (*models.RobinDrive, error) {
	d := models.RobinDrive{
		ID:                  uuid.NewString(),
		UserID:              userID,
		RobinID:             in.RobinID,
		Date:                in.Date,
		Location:            in.Location,
		DriveID:             in.DriveID,
		CommuteMethod:       in.CommuteMethod,
		ContributionMessage: in.ContributionMessage,
		ItemsBrought:        in.ItemsBrought,
		AttendanceMarked:    in.AttendanceMarked,
		CreatedAt:           time.Now().UTC(),
	}
	if err := r.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create robin drive: %w", err)
	}
	return &d, nil
}

// Insert writes a participation row exactly as given
func (r *RobinDriveRepository) Insert(ctx context.Context, d models.RobinDrive) error {
	_, err := r.db.ExecContext(ctx, insertQuery("robin_drives", robinDriveColumns),
		d.ID, d.UserID, d.RobinID, d.Date, d.Location, d.DriveID, d.CommuteMethod,
		d.ContributionMessage, d.ItemsBrought, d.AttendanceMarked, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert robin drive %s: %w", d.ID, err)
	}
	return nil
}

// UnavailabilityRepository handles database operations for robin unavailability
type UnavailabilityRepository struct {
	db database.DBTX
}

// NewUnavailabilityRepository creates a new unavailability repository
func NewUnavailabilityRepository(db database.DBTX) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: db}
}

// List retrieves the owner's unavailability declarations
func (r *UnavailabilityRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.RobinUnavailability, error) {
	query, args, err := selectQuery("robin_unavailability", unavailabilityColumns, userID, opts)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

// ListOn retrieves declarations of every owner for a date
func (r *UnavailabilityRepository) ListOn(ctx context.Context, date string) ([]models.RobinUnavailability, error) {
	query := "SELECT " + joinColumns(unavailabilityColumns) + " FROM robin_unavailability WHERE unavailable_date = ?"
	return r.query(ctx, query, date)
}

// ListAll retrieves every declaration, used by backup export
func (r *UnavailabilityRepository) ListAll(ctx context.Context) ([]models.RobinUnavailability, error) {
	return r.query(ctx, "SELECT "+joinColumns(unavailabilityColumns)+" FROM robin_unavailability ORDER BY created_at, id")
}

func (r *UnavailabilityRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.RobinUnavailability, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unavailability: %w", err)
	}
	defer rows.Close()

	records := []models.RobinUnavailability{}
	for rows.Next() {
		var u models.RobinUnavailability
		if err := rows.Scan(&u.ID, &u.UserID, &u.RobinID, &u.UnavailableDate, &u.Reason, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unavailability: %w", err)
		}
		records = append(records, u)
	}
	return records, rows.Err()
}

// Create declares a robin unavailable for the owner
func (r *UnavailabilityRepository) Create(ctx context.Context, userID string, in models.UnavailabilityInput) (*models.RobinUnavailability, error) {
	u := models.RobinUnavailability{
		ID:              uuid.NewString(),
		UserID:          userID,
		RobinID:         in.RobinID,
		UnavailableDate: in.UnavailableDate,
		Reason:          in.Reason,
		CreatedAt:       time.Now().UTC(),
	}
	if err := r.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create unavailability: %w", err)
	}
	return &u, nil
}

// Insert writes an unavailability row exactly as given
func (r *UnavailabilityRepository) Insert(ctx context.Context, u models.RobinUnavailability) error {
	_, err := r.db.ExecContext(ctx, insertQuery("robin_unavailability", unavailabilityColumns),
		u.ID, u.UserID, u.RobinID, u.UnavailableDate, u.Reason, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert unavailability %s: %w", u.ID, err)
	}
	return nil
}
