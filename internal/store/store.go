package store

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"robinhoodarmy/internal/gateway"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/session"
)

// Store holds every collection of the session user and the operations that
// span more than one of them
type Store struct {
	gw      gateway.Gateway
	session *session.Session
	now     func() time.Time

	Children       *Collection[models.Child]
	Robins         *Collection[models.Robin]
	Drives         *Collection[models.Drive]
	Attendance     *Collection[models.ChildAttendance]
	Participation  *Collection[models.RobinDrive]
	Unavailability *Collection[models.RobinUnavailability]
	Content        *Collection[models.EducationalContent]
}

// New creates an empty store for a session
func New(gw gateway.Gateway, s *session.Session) *Store {
	owner := s.UserID
	return &Store{
		gw:             gw,
		session:        s,
		now:            time.Now,
		Children:       NewCollection[models.Child](gw, models.TableChildren, owner),
		Robins:         NewCollection[models.Robin](gw, models.TableRobins, owner),
		Drives:         NewCollection[models.Drive](gw, models.TableDrives, owner),
		Attendance:     NewCollection[models.ChildAttendance](gw, models.TableChildAttendance, owner),
		Participation:  NewCollection[models.RobinDrive](gw, models.TableRobinDrives, owner),
		Unavailability: NewCollection[models.RobinUnavailability](gw, models.TableRobinUnavailability, owner),
		Content:        NewCollection[models.EducationalContent](gw, models.TableEducationalContent, owner),
	}
}

// Session returns the session the store belongs to
func (s *Store) Session() *session.Session {
	return s.session
}

// LoadAll fetches every collection and returns the first error seen
func (s *Store) LoadAll(ctx context.Context) error {
	fetches := []func(context.Context) error{
		s.Children.FetchAll,
		s.Robins.FetchAll,
		s.Drives.FetchAll,
		s.Attendance.FetchAll,
		s.Participation.FetchAll,
		s.Unavailability.FetchAll,
		s.Content.FetchAll,
	}

	var first error
	for _, fetch := range fetches {
		if err := fetch(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RegisterChild adds a child
func (s *Store) RegisterChild(ctx context.Context, in models.ChildInput) (models.Child, error) {
	in.Normalize()
	return s.Children.Create(ctx, in)
}

// UpdateChild edits a child's details
func (s *Store) UpdateChild(ctx context.Context, id string, patch models.ChildPatch) (models.Child, error) {
	return s.Children.Mutate(ctx, id, patch)
}

// RegisterRobin adds a robin with no drives and an incomplete profile
func (s *Store) RegisterRobin(ctx context.Context, in models.RobinInput) (models.Robin, error) {
	in.Normalize()
	in.DriveCount = 0
	in.Status = models.RobinActive
	in.RegistrationCompleted = false
	in.ProfileCreatedBy = models.StringPtr(s.session.UserID)
	return s.Robins.Create(ctx, in)
}

// UpdateRobin edits a robin's details
func (s *Store) UpdateRobin(ctx context.Context, id string, patch models.RobinPatch) (models.Robin, error) {
	return s.Robins.Mutate(ctx, id, patch)
}

// UpdateRobinLocation reassigns a robin to another locality
func (s *Store) UpdateRobinLocation(ctx context.Context, id, location string) (models.Robin, error) {
	return s.Robins.Mutate(ctx, id, models.RobinPatch{AssignedLocation: models.StringPtr(location)})
}

// CompleteRobinRegistration fills in a robin's profile and marks it complete
func (s *Store) CompleteRobinRegistration(ctx context.Context, id string, profile models.RobinProfile) (models.Robin, error) {
	if err := validate(profile); err != nil {
		return models.Robin{}, err
	}
	return s.Robins.Mutate(ctx, id, profile.Patch())
}

// CreateDrive schedules a drive
func (s *Store) CreateDrive(ctx context.Context, in models.DriveInput) (models.Drive, error) {
	in.Normalize()
	return s.Drives.Create(ctx, in)
}

// UpdateDrive edits a drive
func (s *Store) UpdateDrive(ctx context.Context, id string, patch models.DrivePatch) (models.Drive, error) {
	return s.Drives.Mutate(ctx, id, patch)
}

// MarkAttendance records a child's attendance, bumps the child's counter on
// the backend and refetches the children
func (s *Store) MarkAttendance(ctx context.Context, in models.AttendanceInput) (models.ChildAttendance, error) {
	in.Normalize()
	record, err := s.Attendance.Create(ctx, in)
	if err != nil {
		return record, err
	}

	if err := s.increment(ctx, models.TableChildren, in.ChildID); err != nil {
		return record, err
	}
	if err := s.Children.FetchAll(ctx); err != nil {
		return record, err
	}
	return record, nil
}

// RecordDrive records a robin's participation in a drive, bumps the robin's
// drive count on the backend and refetches the robins
func (s *Store) RecordDrive(ctx context.Context, robinID string, in models.DriveParticipationInput) (models.RobinDrive, error) {
	in.RobinID = robinID
	in.Normalize()
	record, err := s.Participation.Create(ctx, in)
	if err != nil {
		return record, err
	}

	if err := s.increment(ctx, models.TableRobins, robinID); err != nil {
		return record, err
	}
	if err := s.Robins.FetchAll(ctx); err != nil {
		return record, err
	}
	return record, nil
}

func (s *Store) increment(ctx context.Context, table, id string) error {
	err := s.gw.InvokeFunction(ctx, models.FnIncrementCounter, models.IncrementRequest{Table: table, ID: id}, nil)
	if err != nil {
		return fmt.Errorf("failed to increment %s counter: %w", table, err)
	}
	return nil
}

// SetInitialDriveCount records the drives a robin attended before joining
func (s *Store) SetInitialDriveCount(ctx context.Context, robinID string, count int) (models.Robin, error) {
	req := models.InitialDriveCountRequest{RobinID: robinID, Count: count}
	if err := validate(req); err != nil {
		return models.Robin{}, err
	}

	var robin models.Robin
	if err := s.gw.InvokeFunction(ctx, models.FnSetInitialDriveCount, req, &robin); err != nil {
		return robin, err
	}
	if err := s.Robins.FetchAll(ctx); err != nil {
		return robin, err
	}
	return robin, nil
}

// AddUnavailability declares a robin unavailable on a future date
func (s *Store) AddUnavailability(ctx context.Context, in models.UnavailabilityInput) (models.RobinUnavailability, error) {
	return s.Unavailability.Create(ctx, in)
}

// GenerateContent asks the backend for new teaching material and refetches
// the content collection. Errors from the generator are returned verbatim.
func (s *Store) GenerateContent(ctx context.Context, req models.GenerateRequest) (string, error) {
	req.UserID = s.session.UserID
	if err := validate(req); err != nil {
		return "", err
	}

	var result models.GenerateResult
	if err := s.gw.InvokeFunction(ctx, models.FnGenerateContent, req, &result); err != nil {
		return "", err
	}
	if err := s.Content.FetchAll(ctx); err != nil {
		return result.Content, err
	}
	return result.Content, nil
}

// UploadPhoto stores a photo under the user's folder and returns its public URL
func (s *Store) UploadPhoto(ctx context.Context, folder, filename string, data []byte) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", gateway.Invalid(models.ValidationError{Field: "filename", Message: "file has no extension"})
	}

	contentType := mime.TypeByExtension("." + strings.ToLower(ext))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := PhotoKey(s.session.UserID, folder, s.now(), ext)
	return s.gw.UploadBinary(ctx, models.PhotosBucket, key, contentType, data)
}

// PhotoKey builds the object key {userId}/{folder}/{unixMillis}.{ext}
func PhotoKey(userID, folder string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s/%d.%s", userID, strings.Trim(folder, "/"), at.UnixMilli(), ext)
}

// CanEditRobin asks the backend whether the user may edit a robin's profile
func (s *Store) CanEditRobin(ctx context.Context, robinID string) (bool, error) {
	var perm models.Permission
	if err := s.gw.InvokeFunction(ctx, models.FnCanEditRobinProfile, models.RobinRequest{RobinID: robinID}, &perm); err != nil {
		return false, err
	}
	return perm.Allowed, nil
}

// TodayAssignments lists every robin assigned for today with their availability
func (s *Store) TodayAssignments(ctx context.Context) ([]models.TodayAssignment, error) {
	var assignments []models.TodayAssignment
	if err := s.gw.InvokeFunction(ctx, models.FnTodaysAssignedRobins, struct{}{}, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// SendConfirmation asks the backend to send a robin their welcome email
func (s *Store) SendConfirmation(ctx context.Context, email, name, confirmationURL string) (models.ConfirmationResult, error) {
	var result models.ConfirmationResult
	req := models.ConfirmationRequest{Email: email, Name: name, ConfirmationURL: confirmationURL}
	if err := s.gw.InvokeFunction(ctx, models.FnSendConfirmationEmail, req, &result); err != nil {
		return result, err
	}
	return result, nil
}

// CurrentUserRobin returns the robin profile created by the session user
func (s *Store) CurrentUserRobin() (models.Robin, bool) {
	for _, robin := range s.Robins.Items() {
		if robin.ProfileCreatedBy != nil && *robin.ProfileCreatedBy == s.session.UserID {
			return robin, true
		}
	}
	return models.Robin{}, false
}

// CanAddRobins reports whether the user may still add robins: they have no
// profile yet or it is incomplete
func (s *Store) CanAddRobins() bool {
	robin, ok := s.CurrentUserRobin()
	return !ok || !robin.RegistrationCompleted
}
