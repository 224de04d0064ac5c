package models

import (
	"strings"
	"time"
)

// Robin status values
const (
	RobinActive   = "active"
	RobinInactive = "inactive"
)

// Robin represents a volunteer
type Robin struct {
	ID                      string     `json:"id"`
	UserID                  string     `json:"user_id"`
	Name                    string     `json:"name"`
	AssignedLocation        string     `json:"assigned_location"`
	HomeLocation            *string    `json:"home_location"`
	AssignedDate            string     `json:"assigned_date"`
	DriveCount              int        `json:"drive_count"`
	Status                  string     `json:"status"`
	Email                   *string    `json:"email"`
	Phone                   *string    `json:"phone"`
	EmergencyContact        *string    `json:"emergency_contact"`
	Skills                  StringList `json:"skills"`
	AvailabilityPreferences *string    `json:"availability_preferences"`
	RegistrationCompleted   bool       `json:"registration_completed"`
	ProfileCreatedBy        *string    `json:"profile_created_by"`
	PhotoURL                *string    `json:"photo_url"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// RecordID returns the robin's identifier
func (r Robin) RecordID() string { return r.ID }

// ServesLocality reports whether the robin is assigned to or lives in locality
func (r Robin) ServesLocality(locality string) bool {
	if r.AssignedLocation == locality {
		return true
	}
	return r.HomeLocation != nil && *r.HomeLocation == locality
}

// RobinInput holds the fields submitted when registering a robin
type RobinInput struct {
	Name             string     `json:"name"`
	AssignedLocation string     `json:"assigned_location"`
	HomeLocation     *string    `json:"home_location,omitempty"`
	AssignedDate     string     `json:"assigned_date"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	EmergencyContact *string    `json:"emergency_contact,omitempty"`
	Skills           StringList `json:"skills,omitempty"`
	PhotoURL         *string    `json:"photo_url,omitempty"`

	// Set by the repository, not by callers
	DriveCount            int     `json:"drive_count"`
	Status                string  `json:"status"`
	RegistrationCompleted bool    `json:"registration_completed"`
	ProfileCreatedBy      *string `json:"profile_created_by,omitempty"`
}

// Validate checks a robin registration before submission
func (in RobinInput) Validate() error {
	if err := ValidateName("name", in.Name); err != nil {
		return err
	}
	if err := ValidateLocality("assigned_location", in.AssignedLocation); err != nil {
		return err
	}
	if err := ValidateDate("assigned_date", in.AssignedDate); err != nil {
		return err
	}
	if err := optional(in.HomeLocation, func(v string) error { return ValidateLocality("home_location", v) }); err != nil {
		return err
	}
	if err := optional(in.Email, ValidateEmail); err != nil {
		return err
	}
	if err := optional(in.Phone, func(v string) error { return ValidatePhone("phone", v) }); err != nil {
		return err
	}
	if in.Status != "" && in.Status != RobinActive && in.Status != RobinInactive {
		return ValidationError{Field: "status", Message: "must be active or inactive"}
	}
	if in.DriveCount < 0 {
		return ValidationError{Field: "drive_count", Message: "must not be negative"}
	}
	return validateSkills(in.Skills)
}

// Normalize trims free text and applies registration defaults
func (in *RobinInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Skills = cleanList(in.Skills)
	if in.Status == "" {
		in.Status = RobinActive
	}
}

// RobinPatch holds a partial update to a robin. Nil fields are left untouched.
// The drive counter is not patchable; it moves through drive recording and
// the initial drive count procedure.
type RobinPatch struct {
	Name                    *string     `json:"name,omitempty"`
	AssignedLocation        *string     `json:"assigned_location,omitempty"`
	HomeLocation            *string     `json:"home_location,omitempty"`
	AssignedDate            *string     `json:"assigned_date,omitempty"`
	Status                  *string     `json:"status,omitempty"`
	Email                   *string     `json:"email,omitempty"`
	Phone                   *string     `json:"phone,omitempty"`
	EmergencyContact        *string     `json:"emergency_contact,omitempty"`
	Skills                  *StringList `json:"skills,omitempty"`
	AvailabilityPreferences *string     `json:"availability_preferences,omitempty"`
	RegistrationCompleted   *bool       `json:"registration_completed,omitempty"`
	PhotoURL                *string     `json:"photo_url,omitempty"`
}

// Validate checks the fields that are set
func (p RobinPatch) Validate() error {
	if p.Name != nil {
		if err := ValidateName("name", *p.Name); err != nil {
			return err
		}
	}
	if p.AssignedLocation != nil {
		if err := ValidateLocality("assigned_location", *p.AssignedLocation); err != nil {
			return err
		}
	}
	if p.AssignedDate != nil {
		if err := ValidateDate("assigned_date", *p.AssignedDate); err != nil {
			return err
		}
	}
	if err := optional(p.HomeLocation, func(v string) error { return ValidateLocality("home_location", v) }); err != nil {
		return err
	}
	if p.Status != nil && *p.Status != RobinActive && *p.Status != RobinInactive {
		return ValidationError{Field: "status", Message: "must be active or inactive"}
	}
	if err := optional(p.Email, ValidateEmail); err != nil {
		return err
	}
	if err := optional(p.Phone, func(v string) error { return ValidatePhone("phone", v) }); err != nil {
		return err
	}
	if p.Skills != nil {
		return validateSkills(*p.Skills)
	}
	return nil
}

// Columns returns the column assignments for the fields that are set
func (p RobinPatch) Columns() []Column {
	var cols []Column
	cols = appendString(cols, "name", p.Name)
	cols = appendString(cols, "assigned_location", p.AssignedLocation)
	cols = appendString(cols, "home_location", p.HomeLocation)
	cols = appendString(cols, "assigned_date", p.AssignedDate)
	cols = appendString(cols, "status", p.Status)
	cols = appendString(cols, "email", p.Email)
	cols = appendString(cols, "phone", p.Phone)
	cols = appendString(cols, "emergency_contact", p.EmergencyContact)
	if p.Skills != nil {
		cols = append(cols, Column{Name: "skills", Value: cleanList(*p.Skills)})
	}
	cols = appendString(cols, "availability_preferences", p.AvailabilityPreferences)
	if p.RegistrationCompleted != nil {
		cols = append(cols, Column{Name: "registration_completed", Value: *p.RegistrationCompleted})
	}
	cols = appendString(cols, "photo_url", p.PhotoURL)
	return cols
}

// RobinProfile holds the details a robin fills in to complete registration
type RobinProfile struct {
	Email                   string     `json:"email"`
	Phone                   string     `json:"phone"`
	EmergencyContact        string     `json:"emergency_contact"`
	HomeLocation            string     `json:"home_location"`
	Skills                  StringList `json:"skills"`
	AvailabilityPreferences string     `json:"availability_preferences"`
}

// Validate checks a registration profile
func (p RobinProfile) Validate() error {
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	if err := ValidatePhone("phone", p.Phone); err != nil {
		return err
	}
	if strings.TrimSpace(p.EmergencyContact) != "" {
		if err := ValidatePhone("emergency_contact", p.EmergencyContact); err != nil {
			return err
		}
	}
	if p.HomeLocation != "" {
		if err := ValidateLocality("home_location", p.HomeLocation); err != nil {
			return err
		}
	}
	return validateSkills(p.Skills)
}

// Patch converts the profile into a robin patch marking registration complete
func (p RobinProfile) Patch() RobinPatch {
	skills := cleanList(p.Skills)
	patch := RobinPatch{
		Email:                 StringPtr(strings.TrimSpace(p.Email)),
		Phone:                 StringPtr(strings.TrimSpace(p.Phone)),
		Skills:                &skills,
		RegistrationCompleted: BoolPtr(true),
	}
	if p.EmergencyContact != "" {
		patch.EmergencyContact = StringPtr(p.EmergencyContact)
	}
	if p.HomeLocation != "" {
		patch.HomeLocation = StringPtr(p.HomeLocation)
	}
	if p.AvailabilityPreferences != "" {
		patch.AvailabilityPreferences = StringPtr(p.AvailabilityPreferences)
	}
	return patch
}

func validateSkills(skills StringList) error {
	for _, skill := range skills {
		if !IsSkill(strings.TrimSpace(skill)) {
			return ValidationError{Field: "skills", Message: "unknown skill " + skill}
		}
	}
	return nil
}
