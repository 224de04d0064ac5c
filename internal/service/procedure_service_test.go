package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/repository"
	"robinhoodarmy/internal/testutil"
)

func createRobin(t *testing.T, repo *repository.RobinRepository, owner, name, date string, createdBy *string) *models.Robin {
	t.Helper()
	in := models.RobinInput{Name: name, AssignedLocation: "Dwarka", AssignedDate: date, ProfileCreatedBy: createdBy}
	in.Normalize()
	robin, err := repo.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", name, err)
	}
	return robin
}

func TestIncrementCounterConcurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewProcedureService(db, nil)
	ctx := context.Background()
	robin := createRobin(t, repository.NewRobinRepository(db), "u1", "Asha", "2024-01-07", nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.IncrementCounter(ctx, "u1", models.IncrementRequest{Table: models.TableRobins, ID: robin.ID}); err != nil {
				t.Errorf("IncrementCounter() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repository.NewRobinRepository(db).GetByID(ctx, "u1", robin.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.DriveCount != 5 {
		t.Errorf("DriveCount = %d, want 5", got.DriveCount)
	}
}

func TestIncrementCounterRejections(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewProcedureService(db, nil)
	ctx := context.Background()
	robin := createRobin(t, repository.NewRobinRepository(db), "u1", "Asha", "2024-01-07", nil)

	if _, err := svc.IncrementCounter(ctx, "u1", models.IncrementRequest{Table: models.TableDrives, ID: robin.ID}); !errors.Is(err, ErrInvalidCounter) {
		t.Errorf("IncrementCounter(drives) error = %v, want ErrInvalidCounter", err)
	}
	if _, err := svc.IncrementCounter(ctx, "u2", models.IncrementRequest{Table: models.TableRobins, ID: robin.ID}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("IncrementCounter() by other owner error = %v, want ErrNotFound", err)
	}
}

func TestSetInitialDriveCount(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewProcedureService(db, nil)
	ctx := context.Background()
	robin := createRobin(t, repository.NewRobinRepository(db), "u1", "Asha", "2024-01-07", nil)

	updated, err := svc.SetInitialDriveCount(ctx, "u1", models.InitialDriveCountRequest{RobinID: robin.ID, Count: 7})
	if err != nil {
		t.Fatalf("SetInitialDriveCount() error = %v", err)
	}
	if updated.DriveCount != 7 {
		t.Errorf("DriveCount = %d, want 7", updated.DriveCount)
	}

	if _, err := svc.SetInitialDriveCount(ctx, "u1", models.InitialDriveCountRequest{RobinID: robin.ID, Count: 2}); !errors.Is(err, repository.ErrDriveCountSet) {
		t.Errorf("second SetInitialDriveCount() error = %v, want ErrDriveCountSet", err)
	}

	recorded := createRobin(t, repository.NewRobinRepository(db), "u1", "Bala", "2024-01-07", nil)
	if _, err := svc.IncrementCounter(ctx, "u1", models.IncrementRequest{Table: models.TableRobins, ID: recorded.ID}); err != nil {
		t.Fatalf("IncrementCounter() error = %v", err)
	}
	if _, err := svc.SetInitialDriveCount(ctx, "u1", models.InitialDriveCountRequest{RobinID: recorded.ID, Count: 5}); !errors.Is(err, repository.ErrDriveCountSet) {
		t.Errorf("SetInitialDriveCount() after a recorded drive error = %v, want ErrDriveCountSet", err)
	}

	var verr models.ValidationError
	if _, err := svc.SetInitialDriveCount(ctx, "u1", models.InitialDriveCountRequest{RobinID: robin.ID, Count: -1}); !errors.As(err, &verr) {
		t.Errorf("SetInitialDriveCount(-1) error = %v, want validation error", err)
	}
}

func TestCanEditRobinProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewProcedureService(db, nil)
	ctx := context.Background()
	robin := createRobin(t, repository.NewRobinRepository(db), "owner", "Asha", "2024-01-07", models.StringPtr("coordinator"))

	tests := []struct {
		user    string
		robinID string
		want    bool
	}{
		{"owner", robin.ID, true},
		{"coordinator", robin.ID, true},
		{"stranger", robin.ID, false},
		{"owner", "missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.robinID, func(t *testing.T) {
			got, err := svc.CanEditRobinProfile(ctx, tt.user, models.RobinRequest{RobinID: tt.robinID})
			if err != nil {
				t.Fatalf("CanEditRobinProfile() error = %v", err)
			}
			if got.Allowed != tt.want {
				t.Errorf("CanEditRobinProfile() = %v, want %v", got.Allowed, tt.want)
			}
		})
	}
}

func TestTodaysAssignedRobins(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewProcedureService(db, nil)
	svc.today = func() string { return "2030-05-05" }
	ctx := context.Background()
	robins := repository.NewRobinRepository(db)

	asha := createRobin(t, robins, "u1", "Asha", "2030-05-05", nil)
	createRobin(t, robins, "u2", "Bala", "2030-05-05", nil)
	createRobin(t, robins, "u1", "Chitra", "2030-05-06", nil)

	_, err := repository.NewUnavailabilityRepository(db).Create(ctx, "u1", models.UnavailabilityInput{RobinID: asha.ID, UnavailableDate: "2030-05-05"})
	if err != nil {
		t.Fatalf("unavailability Create() error = %v", err)
	}

	if _, err := svc.TodaysAssignedRobins(ctx, ""); !errors.Is(err, ErrAdminRequired) {
		t.Errorf("TodaysAssignedRobins() without role error = %v, want ErrAdminRequired", err)
	}

	got, err := svc.TodaysAssignedRobins(ctx, models.RoleAdmin)
	if err != nil {
		t.Fatalf("TodaysAssignedRobins() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("TodaysAssignedRobins() returned %d robins, want 2", len(got))
	}
	if got[0].RobinName != "Asha" || !got[0].IsUnavailable {
		t.Errorf("first assignment = %+v, want Asha unavailable", got[0])
	}
	if got[1].RobinName != "Bala" || got[1].IsUnavailable {
		t.Errorf("second assignment = %+v, want Bala available", got[1])
	}
}
