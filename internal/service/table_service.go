package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
	"robinhoodarmy/internal/repository"
)

var (
	ErrInvalidTable     = errors.New("unknown table")
	ErrReadOnlyTable    = errors.New("table does not accept this operation")
	ErrInvalidReference = errors.New("referenced record not found")
	ErrInvalidBody      = errors.New("invalid request body")
)

// TableService implements the per-user table operations exposed over REST
type TableService struct {
	children       *repository.ChildRepository
	robins         *repository.RobinRepository
	drives         *repository.DriveRepository
	attendance     *repository.AttendanceRepository
	robinDrives    *repository.RobinDriveRepository
	unavailability *repository.UnavailabilityRepository
	content        *repository.ContentRepository
	publisher      realtime.Publisher
}

// NewTableService creates a table service over db. Changes are announced on publisher.
func NewTableService(db database.DBTX, publisher realtime.Publisher) *TableService {
	return &TableService{
		children:       repository.NewChildRepository(db),
		robins:         repository.NewRobinRepository(db),
		drives:         repository.NewDriveRepository(db),
		attendance:     repository.NewAttendanceRepository(db),
		robinDrives:    repository.NewRobinDriveRepository(db),
		unavailability: repository.NewUnavailabilityRepository(db),
		content:        repository.NewContentRepository(db),
		publisher:      publisher,
	}
}

// List returns the caller's rows of a table
func (s *TableService) List(ctx context.Context, userID, table string, opts repository.ListOptions) (interface{}, error) {
	switch table {
	case models.TableChildren:
		return s.children.List(ctx, userID, opts)
	case models.TableRobins:
		return s.robins.List(ctx, userID, opts)
	case models.TableDrives:
		return s.drives.List(ctx, userID, opts)
	case models.TableChildAttendance:
		return s.attendance.List(ctx, userID, opts)
	case models.TableRobinDrives:
		return s.robinDrives.List(ctx, userID, opts)
	case models.TableRobinUnavailability:
		return s.unavailability.List(ctx, userID, opts)
	case models.TableEducationalContent:
		return s.content.List(ctx, userID, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidTable, table)
}

// Create decodes, validates and inserts a row owned by the caller
func (s *TableService) Create(ctx context.Context, userID, table string, body []byte) (interface{}, error) {
	record, err := s.create(ctx, userID, table, body)
	if err != nil {
		return nil, err
	}
	s.publish(table, userID, realtime.EventInsert, record)
	return record, nil
}

func (s *TableService) create(ctx context.Context, userID, table string, body []byte) (interface{}, error) {
	switch table {
	case models.TableChildren:
		var in models.ChildInput
		if err := decodeValid(body, &in, in.Normalize, func() error { return in.Validate() }); err != nil {
			return nil, err
		}
		return s.children.Create(ctx, userID, in)

	case models.TableRobins:
		var in models.RobinInput
		if err := decodeValid(body, &in, in.Normalize, func() error { return in.Validate() }); err != nil {
			return nil, err
		}
		// Counters only move through procedures
		in.DriveCount = 0
		if in.ProfileCreatedBy == nil {
			in.ProfileCreatedBy = models.StringPtr(userID)
		}
		return s.robins.Create(ctx, userID, in)

	case models.TableDrives:
		var in models.DriveInput
		if err := decodeValid(body, &in, in.Normalize, func() error { return in.Validate() }); err != nil {
			return nil, err
		}
		return s.drives.Create(ctx, userID, in)

	case models.TableChildAttendance:
		var in models.AttendanceInput
		if err := decodeValid(body, &in, in.Normalize, func() error { return in.Validate() }); err != nil {
			return nil, err
		}
		if err := s.verifyChild(ctx, userID, in.ChildID); err != nil {
			return nil, err
		}
		if err := s.verifyDrive(ctx, userID, in.DriveID); err != nil {
			return nil, err
		}
		return s.attendance.Create(ctx, userID, in)

	case models.TableRobinDrives:
		var in models.DriveParticipationInput
		if err := decodeValid(body, &in, in.Normalize, func() error { return in.Validate() }); err != nil {
			return nil, err
		}
		if err := s.verifyRobin(ctx, userID, in.RobinID); err != nil {
			return nil, err
		}
		if err := s.verifyDrive(ctx, userID, in.DriveID); err != nil {
			return nil, err
		}
		return s.robinDrives.Create(ctx, userID, in)

	case models.TableRobinUnavailability:
		var in models.UnavailabilityInput
		if err := decodeValid(body, &in, func() {}, func() error { return in.Validate() }); err != nil {
			return nil, err
		}
		if err := s.verifyRobin(ctx, userID, in.RobinID); err != nil {
			return nil, err
		}
		return s.unavailability.Create(ctx, userID, in)

	case models.TableEducationalContent:
		return nil, fmt.Errorf("%w: %s is written by %s", ErrReadOnlyTable, table, models.FnGenerateContent)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidTable, table)
}

// Update applies a partial update to one of the caller's rows
func (s *TableService) Update(ctx context.Context, userID, table, id string, body []byte) (interface{}, error) {
	record, err := s.update(ctx, userID, table, id, body)
	if err != nil {
		return nil, err
	}
	s.publish(table, userID, realtime.EventUpdate, record)
	return record, nil
}

func (s *TableService) update(ctx context.Context, userID, table, id string, body []byte) (interface{}, error) {
	switch table {
	case models.TableChildren:
		var patch models.ChildPatch
		if err := decodeValid(body, &patch, func() {}, func() error { return patch.Validate() }); err != nil {
			return nil, err
		}
		return s.children.Update(ctx, userID, id, patch)

	case models.TableRobins:
		var patch models.RobinPatch
		if err := decodeValid(body, &patch, func() {}, func() error { return patch.Validate() }); err != nil {
			return nil, err
		}
		return s.robins.Update(ctx, userID, id, patch)

	case models.TableDrives:
		var patch models.DrivePatch
		if err := decodeValid(body, &patch, func() {}, func() error { return patch.Validate() }); err != nil {
			return nil, err
		}
		return s.drives.Update(ctx, userID, id, patch)

	case models.TableChildAttendance, models.TableRobinDrives, models.TableRobinUnavailability, models.TableEducationalContent:
		return nil, fmt.Errorf("%w: %s rows cannot be updated", ErrReadOnlyTable, table)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidTable, table)
}

func (s *TableService) publish(table, userID, event string, record interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(table, userID, event, record)
	}
}

func (s *TableService) verifyChild(ctx context.Context, userID, childID string) error {
	child, err := s.children.GetByID(ctx, userID, childID)
	if err != nil {
		return err
	}
	if child == nil {
		return fmt.Errorf("%w: child %s", ErrInvalidReference, childID)
	}
	return nil
}

func (s *TableService) verifyRobin(ctx context.Context, userID, robinID string) error {
	robin, err := s.robins.GetByID(ctx, userID, robinID)
	if err != nil {
		return err
	}
	if robin == nil {
		return fmt.Errorf("%w: robin %s", ErrInvalidReference, robinID)
	}
	return nil
}

func (s *TableService) verifyDrive(ctx context.Context, userID string, driveID *string) error {
	if driveID == nil || *driveID == "" {
		return nil
	}
	drive, err := s.drives.GetByID(ctx, userID, *driveID)
	if err != nil {
		return err
	}
	if drive == nil {
		return fmt.Errorf("%w: drive %s", ErrInvalidReference, *driveID)
	}
	return nil
}

// decodeValid strictly decodes body into v, then normalizes and validates it
func decodeValid(body []byte, v interface{}, normalize func(), validate func() error) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		log.Printf("Rejected request body: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	normalize()
	return validate()
}
