package models

import (
	"strings"
	"time"
)

// Child represents a child served by the charity
type Child struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Name            string     `json:"name"`
	MotherName      string     `json:"mother_name"`
	FatherName      string     `json:"father_name"`
	AadhaarNumber   *string    `json:"aadhaar_number"`
	SchoolName      *string    `json:"school_name"`
	AgeGroup        int        `json:"age_group"`
	Location        *string    `json:"location"`
	Tags            StringList `json:"tags"`
	AttendanceCount int        `json:"attendance_count"`
	PhotoURL        *string    `json:"photo_url"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RecordID returns the child's identifier
func (c Child) RecordID() string { return c.ID }

// LocationName returns the child's locality or an empty string
func (c Child) LocationName() string {
	if c.Location == nil {
		return ""
	}
	return *c.Location
}

// ChildInput holds the fields submitted when registering a child
type ChildInput struct {
	Name          string     `json:"name"`
	MotherName    string     `json:"mother_name"`
	FatherName    string     `json:"father_name"`
	AadhaarNumber *string    `json:"aadhaar_number,omitempty"`
	SchoolName    *string    `json:"school_name,omitempty"`
	AgeGroup      int        `json:"age_group"`
	Location      *string    `json:"location,omitempty"`
	Tags          StringList `json:"tags,omitempty"`
	PhotoURL      *string    `json:"photo_url,omitempty"`
}

// Validate checks a child registration before submission
func (in ChildInput) Validate() error {
	if err := ValidateName("name", in.Name); err != nil {
		return err
	}
	if err := ValidateName("mother_name", in.MotherName); err != nil {
		return err
	}
	if err := ValidateName("father_name", in.FatherName); err != nil {
		return err
	}
	if in.AgeGroup < 1 {
		return ValidationError{Field: "age_group", Message: "must be a positive number"}
	}
	if err := optional(in.AadhaarNumber, ValidateAadhaar); err != nil {
		return err
	}
	return optional(in.Location, func(v string) error { return ValidateLocality("location", v) })
}

// Normalize trims names and drops empty tags
func (in *ChildInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.MotherName = strings.TrimSpace(in.MotherName)
	in.FatherName = strings.TrimSpace(in.FatherName)
	in.Tags = cleanList(in.Tags)
}

// ChildPatch holds a partial update to a child. Nil fields are left untouched.
// The attendance counter is not patchable; it only moves through attendance marking.
type ChildPatch struct {
	Name          *string     `json:"name,omitempty"`
	MotherName    *string     `json:"mother_name,omitempty"`
	FatherName    *string     `json:"father_name,omitempty"`
	AadhaarNumber *string     `json:"aadhaar_number,omitempty"`
	SchoolName    *string     `json:"school_name,omitempty"`
	AgeGroup      *int        `json:"age_group,omitempty"`
	Location      *string     `json:"location,omitempty"`
	Tags          *StringList `json:"tags,omitempty"`
	PhotoURL      *string     `json:"photo_url,omitempty"`
}

// Validate checks the fields that are set
func (p ChildPatch) Validate() error {
	names := []struct {
		field string
		value *string
	}{
		{"name", p.Name},
		{"mother_name", p.MotherName},
		{"father_name", p.FatherName},
	}
	for _, n := range names {
		if n.value != nil {
			if err := ValidateName(n.field, *n.value); err != nil {
				return err
			}
		}
	}
	if p.AgeGroup != nil && *p.AgeGroup < 1 {
		return ValidationError{Field: "age_group", Message: "must be a positive number"}
	}
	if err := optional(p.AadhaarNumber, ValidateAadhaar); err != nil {
		return err
	}
	return optional(p.Location, func(v string) error { return ValidateLocality("location", v) })
}

// Columns returns the column assignments for the fields that are set
func (p ChildPatch) Columns() []Column {
	var cols []Column
	cols = appendString(cols, "name", p.Name)
	cols = appendString(cols, "mother_name", p.MotherName)
	cols = appendString(cols, "father_name", p.FatherName)
	cols = appendString(cols, "aadhaar_number", p.AadhaarNumber)
	cols = appendString(cols, "school_name", p.SchoolName)
	if p.AgeGroup != nil {
		cols = append(cols, Column{Name: "age_group", Value: *p.AgeGroup})
	}
	cols = appendString(cols, "location", p.Location)
	if p.Tags != nil {
		cols = append(cols, Column{Name: "tags", Value: cleanList(*p.Tags)})
	}
	cols = appendString(cols, "photo_url", p.PhotoURL)
	return cols
}

func appendString(cols []Column, name string, value *string) []Column {
	if value == nil {
		return cols
	}
	return append(cols, Column{Name: name, Value: *value})
}

func cleanList(items StringList) StringList {
	var out StringList
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
