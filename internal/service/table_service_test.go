package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
	"robinhoodarmy/internal/repository"
	"robinhoodarmy/internal/testutil"
)

const childBody = `{"name":"Ravi","mother_name":"Sita","father_name":"Mohan","age_group":8,"location":"Dwarka","tags":["shy"]}`

func TestTableServiceCreateAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	hub := realtime.NewHub(4)
	svc := NewTableService(db, hub)
	ctx := context.Background()

	sub := hub.Subscribe(models.TableChildren, "u1")
	defer sub.Close()

	created, err := svc.Create(ctx, "u1", models.TableChildren, []byte(childBody))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	child := created.(*models.Child)
	if child.UserID != "u1" || child.AttendanceCount != 0 {
		t.Errorf("Create() = %+v", child)
	}

	select {
	case change := <-sub.C():
		if change.Event != realtime.EventInsert {
			t.Errorf("change event = %s, want INSERT", change.Event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an INSERT change")
	}

	listed, err := svc.List(ctx, "u2", models.TableChildren, repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := listed.([]models.Child); len(got) != 0 {
		t.Errorf("List(u2) returned %d children, want 0", len(got))
	}
}

func TestTableServiceRejections(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewTableService(db, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", models.TableChildren, []byte(childBody))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	childID := created.(*models.Child).ID

	tests := []struct {
		name  string
		user  string
		table string
		body  string
		want  error
	}{
		{"unknown table", "u1", "users", `{}`, ErrInvalidTable},
		{"content is function-only", "u1", models.TableEducationalContent, `{}`, ErrReadOnlyTable},
		{"unknown field", "u1", models.TableChildren, `{"name":"Ravi","attendance_count":5}`, ErrInvalidBody},
		{"other owner's child", "u2", models.TableChildAttendance, `{"child_id":"` + childID + `","location":"Dwarka"}`, ErrInvalidReference},
		{"missing drive", "u1", models.TableChildAttendance, `{"child_id":"` + childID + `","location":"Dwarka","drive_id":"nope"}`, ErrInvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.user, tt.table, []byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	var verr models.ValidationError
	_, err = svc.Create(ctx, "u1", models.TableChildren, []byte(`{"name":"R","mother_name":"Sita","father_name":"Mohan","age_group":8}`))
	if !errors.As(err, &verr) || verr.Field != "name" {
		t.Errorf("Create() short name error = %v, want name validation error", err)
	}
}

func TestTableServiceUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := testutil.NewDB(t)
	svc := NewTableService(db, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "u1", models.TableRobins, []byte(`{"name":"Asha","assigned_location":"Dwarka","assigned_date":"2024-01-07","drive_count":40}`))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	robin := created.(*models.Robin)
	if robin.DriveCount != 0 || robin.ProfileCreatedBy == nil || *robin.ProfileCreatedBy != "u1" {
		t.Errorf("Create() robin = %+v, want zero drive count created by u1", robin)
	}

	updated, err := svc.Update(ctx, "u1", models.TableRobins, robin.ID, []byte(`{"assigned_location":"Rohini"}`))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.(*models.Robin).AssignedLocation != "Rohini" {
		t.Errorf("Update() = %+v", updated)
	}

	if _, err := svc.Update(ctx, "u2", models.TableRobins, robin.ID, []byte(`{"name":"Stolen"}`)); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Update() by other owner error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "u1", models.TableRobins, robin.ID, []byte(`{"drive_count":99}`)); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("Update(drive_count) error = %v, want ErrInvalidBody", err)
	}
	if _, err := svc.Update(ctx, "u1", models.TableRobinDrives, "x", []byte(`{}`)); !errors.Is(err, ErrReadOnlyTable) {
		t.Errorf("Update(robin_drives) error = %v, want ErrReadOnlyTable", err)
	}
}
