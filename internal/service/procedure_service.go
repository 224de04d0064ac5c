package service

import (
	"context"
	"errors"
	"fmt"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
	"robinhoodarmy/internal/repository"
)

var (
	// ErrInvalidCounter is returned when increment-counter names a table without a counter
	ErrInvalidCounter = errors.New("table has no counter")
	// ErrAdminRequired is returned when a caller without the admin role runs a cross-user procedure
	ErrAdminRequired = errors.New("admin role required")
)

// ProcedureService implements the privileged server-side procedures
type ProcedureService struct {
	children       *repository.ChildRepository
	robins         *repository.RobinRepository
	unavailability *repository.UnavailabilityRepository
	publisher      realtime.Publisher
	today          func() string
}

// NewProcedureService creates a new procedure service
func NewProcedureService(db database.DBTX, publisher realtime.Publisher) *ProcedureService {
	return &ProcedureService{
		children:       repository.NewChildRepository(db),
		robins:         repository.NewRobinRepository(db),
		unavailability: repository.NewUnavailabilityRepository(db),
		publisher:      publisher,
		today:          models.Today,
	}
}

// IncrementCounter adds one to the counter of a parent row in a single
// UPDATE, so concurrent callers never lose an increment
func (s *ProcedureService) IncrementCounter(ctx context.Context, userID string, req models.IncrementRequest) (interface{}, error) {
	if req.ID == "" {
		return nil, models.ValidationError{Field: "id", Message: "id is required"}
	}

	var (
		record interface{}
		err    error
	)
	switch req.Table {
	case models.TableChildren:
		record, err = s.children.IncrementAttendance(ctx, userID, req.ID)
	case models.TableRobins:
		record, err = s.robins.IncrementDriveCount(ctx, userID, req.ID)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCounter, req.Table)
	}
	if err != nil {
		return nil, err
	}

	s.publish(req.Table, userID, record)
	return record, nil
}

// SetInitialDriveCount records the drives a robin attended before joining.
// It is refused once the robin has any drives counted.
func (s *ProcedureService) SetInitialDriveCount(ctx context.Context, userID string, req models.InitialDriveCountRequest) (*models.Robin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	robin, err := s.robins.SetInitialDriveCount(ctx, userID, req.RobinID, req.Count)
	if err != nil {
		return nil, err
	}

	s.publish(models.TableRobins, userID, robin)
	return robin, nil
}

// CanEditRobinProfile reports whether the caller owns the robin or created its profile
func (s *ProcedureService) CanEditRobinProfile(ctx context.Context, userID string, req models.RobinRequest) (models.Permission, error) {
	if req.RobinID == "" {
		return models.Permission{}, models.ValidationError{Field: "robinId", Message: "robinId is required"}
	}

	robin, err := s.robins.FindByID(ctx, req.RobinID)
	if err != nil {
		return models.Permission{}, err
	}
	if robin == nil {
		return models.Permission{Allowed: false}, nil
	}

	allowed := robin.UserID == userID ||
		(robin.ProfileCreatedBy != nil && *robin.ProfileCreatedBy == userID)
	return models.Permission{Allowed: allowed}, nil
}

// TodaysAssignedRobins lists every active robin assigned for today, flagging
// those who declared themselves unavailable. It reads every owner's robins,
// so only admins may call it.
func (s *ProcedureService) TodaysAssignedRobins(ctx context.Context, role string) ([]models.TodayAssignment, error) {
	if role != models.RoleAdmin {
		return nil, ErrAdminRequired
	}
	today := s.today()

	robins, err := s.robins.ListAssignedOn(ctx, today)
	if err != nil {
		return nil, err
	}
	declarations, err := s.unavailability.ListOn(ctx, today)
	if err != nil {
		return nil, err
	}

	unavailable := make(map[string]bool, len(declarations))
	for _, d := range declarations {
		unavailable[d.RobinID] = true
	}

	assignments := make([]models.TodayAssignment, 0, len(robins))
	for _, r := range robins {
		assignments = append(assignments, models.TodayAssignment{
			RobinID:          r.ID,
			RobinName:        r.Name,
			AssignedLocation: r.AssignedLocation,
			IsUnavailable:    unavailable[r.ID],
		})
	}
	return assignments, nil
}

func (s *ProcedureService) publish(table, userID string, record interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(table, userID, realtime.EventUpdate, record)
	}
}
