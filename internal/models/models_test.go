package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRobinInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   RobinInput
		wantErr bool
	}{
		{
			name:    "valid robin",
			input:   RobinInput{Name: "Asha", AssignedLocation: "Dwarka", AssignedDate: "2024-01-07"},
			wantErr: false,
		},
		{
			name:    "unknown locality",
			input:   RobinInput{Name: "Asha", AssignedLocation: "Atlantis", AssignedDate: "2024-01-07"},
			wantErr: true,
		},
		{
			name:    "bad date",
			input:   RobinInput{Name: "Asha", AssignedLocation: "Dwarka", AssignedDate: "07/01/2024"},
			wantErr: true,
		},
		{
			name:    "short name",
			input:   RobinInput{Name: " A ", AssignedLocation: "Dwarka", AssignedDate: "2024-01-07"},
			wantErr: true,
		},
		{
			name: "bad email",
			input: RobinInput{
				Name: "Asha", AssignedLocation: "Dwarka", AssignedDate: "2024-01-07",
				Email: StringPtr("asha-at-example"),
			},
			wantErr: true,
		},
		{
			name: "unknown skill",
			input: RobinInput{
				Name: "Asha", AssignedLocation: "Dwarka", AssignedDate: "2024-01-07",
				Skills: StringList{"Juggling"},
			},
			wantErr: true,
		},
		{
			name: "home locality optional but checked",
			input: RobinInput{
				Name: "Asha", AssignedLocation: "Dwarka", AssignedDate: "2024-01-07",
				HomeLocation: StringPtr("Rohini"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("RobinInput.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRobinInputNormalizeDefaults(t *testing.T) {
	in := RobinInput{Name: "  Asha  ", Skills: StringList{"Teaching", " ", ""}}
	in.Normalize()

	if in.Name != "Asha" {
		t.Errorf("Name = %q, want %q", in.Name, "Asha")
	}
	if in.Status != RobinActive {
		t.Errorf("Status = %q, want %q", in.Status, RobinActive)
	}
	if len(in.Skills) != 1 {
		t.Errorf("len(Skills) = %d, want 1", len(in.Skills))
	}
}

func TestChildInputValidate(t *testing.T) {
	base := ChildInput{Name: "Ravi", MotherName: "Sita", FatherName: "Mohan", AgeGroup: 8}

	tests := []struct {
		name    string
		mutate  func(in *ChildInput)
		wantErr bool
	}{
		{"valid child", func(in *ChildInput) {}, false},
		{"missing mother", func(in *ChildInput) { in.MotherName = "" }, true},
		{"zero age", func(in *ChildInput) { in.AgeGroup = 0 }, true},
		{"aadhaar with spaces", func(in *ChildInput) { in.AadhaarNumber = StringPtr("1234 5678 9012") }, false},
		{"short aadhaar", func(in *ChildInput) { in.AadhaarNumber = StringPtr("12345") }, true},
		{"empty aadhaar ignored", func(in *ChildInput) { in.AadhaarNumber = StringPtr("") }, false},
		{"unknown location", func(in *ChildInput) { in.Location = StringPtr("Gotham") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("ChildInput.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChildPatchColumns(t *testing.T) {
	tags := StringList{"shy", " "}
	patch := ChildPatch{Name: StringPtr("Ravi"), Tags: &tags, AgeGroup: IntPtr(9)}

	cols := patch.Columns()
	if len(cols) != 3 {
		t.Fatalf("len(Columns()) = %d, want 3", len(cols))
	}

	names := map[string]bool{}
	for _, c := range cols {
		names[c.Name] = true
	}
	for _, want := range []string{"name", "tags", "age_group"} {
		if !names[want] {
			t.Errorf("Columns() missing %q", want)
		}
	}
	if names["attendance_count"] {
		t.Error("Columns() must never include attendance_count")
	}
}

func TestRobinProfilePatchMarksRegistrationComplete(t *testing.T) {
	profile := RobinProfile{Email: "asha@example.org", Phone: "9876543210", Skills: StringList{"Teaching"}}
	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	patch := profile.Patch()
	if patch.RegistrationCompleted == nil || !*patch.RegistrationCompleted {
		t.Error("Patch() should set registration_completed")
	}
	if patch.HomeLocation != nil {
		t.Error("Patch() should leave home_location untouched when empty")
	}
}

func TestUnavailabilityRequiresFutureDate(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)

	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"tomorrow", tomorrow, false},
		{"today", Today(), true},
		{"past", "2020-01-01", true},
		{"garbage", "soon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UnavailabilityInput{RobinID: "r1", UnavailableDate: tt.date}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"numeric age", `{"ageGroup":8,"subject":"Science","contentType":"Story","userId":"u1"}`, ""},
		{"string age", `{"ageGroup":"8","subject":"Science","contentType":"story","userId":"u1"}`, ""},
		{"age too high", `{"ageGroup":"25","subject":"Science","contentType":"Story","userId":"u1"}`, "Age group must be a number between 3 and 20"},
		{"age too low", `{"ageGroup":2,"subject":"Science","contentType":"Story","userId":"u1"}`, "Age group must be a number between 3 and 20"},
		{"empty subject", `{"ageGroup":8,"subject":"  ","contentType":"Story","userId":"u1"}`, "Subject is required"},
		{"bad tone", `{"ageGroup":8,"subject":"Science","contentType":"Story","tone":"Grim"}`, "Tone must be one of: Formal, Fun, Playful, Academic, Story-based"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req GenerateRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			err := req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if verr.Message != tt.wantErr {
				t.Errorf("Validate() message = %q, want %q", verr.Message, tt.wantErr)
			}
		})
	}
}

func TestStringListScan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    int
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"text", `["rice","books"]`, 2, false},
		{"bytes", []byte(`["rice"]`), 1, false},
		{"empty string", "", 0, false},
		{"not json", "rice,books", 0, true},
		{"wrong type", 42, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			err := l.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(l) != tt.want {
				t.Errorf("len = %d, want %d", len(l), tt.want)
			}
		})
	}
}

func TestStringListValueNil(t *testing.T) {
	v, err := StringList(nil).Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "[]" {
		t.Errorf("Value() = %v, want []", v)
	}
}

func TestFlexIntDecoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexInt
	}{
		{"number", `8`, 8},
		{"numeric string", `" 12 "`, 12},
		{"null", `null`, 0},
		{"word", `"eight"`, 0},
		{"fraction", `7.5`, 0},
		{"bool", `true`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FlexInt(99)
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if f != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, f, tt.want)
			}
		})
	}
}

func TestGenerateRequestNonNumericAge(t *testing.T) {
	var req GenerateRequest
	body := `{"ageGroup":"abc","subject":"Science","contentType":"Story","userId":"u1"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	var verr ValidationError
	if err := req.Validate(); !errors.As(err, &verr) || verr.Message != "Age group must be a number between 3 and 20" {
		t.Errorf("Validate() error = %v, want age group message", err)
	}
}

func TestChildPatchValidateReportsFirstField(t *testing.T) {
	short := "A"
	patch := ChildPatch{Name: &short, MotherName: &short, FatherName: &short}

	for i := 0; i < 20; i++ {
		var verr ValidationError
		if err := patch.Validate(); !errors.As(err, &verr) || verr.Field != "name" {
			t.Fatalf("Validate() error = %v, want name field", err)
		}
	}
}
