package models

import (
	"strings"
	"time"
)

// Drive represents a community service event
type Drive struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	Name                  string     `json:"name"`
	Date                  string     `json:"date"`
	Location              string     `json:"location"`
	Summary               *string    `json:"summary"`
	RobinGroupPhotoURL    *string    `json:"robin_group_photo_url"`
	ChildrenGroupPhotoURL *string    `json:"children_group_photo_url"`
	CombinedGroupPhotoURL *string    `json:"combined_group_photo_url"`
	ItemsDistributed      StringList `json:"items_distributed"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// RecordID returns the drive's identifier
func (d Drive) RecordID() string { return d.ID }

// DriveInput holds the fields submitted when creating a drive
type DriveInput struct {
	Name                  string     `json:"name"`
	Date                  string     `json:"date"`
	Location              string     `json:"location"`
	Summary               *string    `json:"summary,omitempty"`
	RobinGroupPhotoURL    *string    `json:"robin_group_photo_url,omitempty"`
	ChildrenGroupPhotoURL *string    `json:"children_group_photo_url,omitempty"`
	CombinedGroupPhotoURL *string    `json:"combined_group_photo_url,omitempty"`
	ItemsDistributed      StringList `json:"items_distributed,omitempty"`
}

// Validate checks a drive before submission
func (in DriveInput) Validate() error {
	if err := ValidateName("name", in.Name); err != nil {
		return err
	}
	if err := ValidateDate("date", in.Date); err != nil {
		return err
	}
	return ValidateLocality("location", in.Location)
}

// Normalize trims free text and drops empty item names
func (in *DriveInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ItemsDistributed = cleanList(in.ItemsDistributed)
}

// DrivePatch holds a partial update to a drive
type DrivePatch struct {
	Name                  *string     `json:"name,omitempty"`
	Date                  *string     `json:"date,omitempty"`
	Location              *string     `json:"location,omitempty"`
	Summary               *string     `json:"summary,omitempty"`
	RobinGroupPhotoURL    *string     `json:"robin_group_photo_url,omitempty"`
	ChildrenGroupPhotoURL *string     `json:"children_group_photo_url,omitempty"`
	CombinedGroupPhotoURL *string     `json:"combined_group_photo_url,omitempty"`
	ItemsDistributed      *StringList `json:"items_distributed,omitempty"`
}

// Validate checks the fields that are set
func (p DrivePatch) Validate() error {
	if p.Name != nil {
		if err := ValidateName("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := ValidateDate("date", *p.Date); err != nil {
			return err
		}
	}
	if p.Location != nil {
		return ValidateLocality("location", *p.Location)
	}
	return nil
}

// Columns returns the column assignments for the fields that are set
func (p DrivePatch) Columns() []Column {
	var cols []Column
	cols = appendString(cols, "name", p.Name)
	cols = appendString(cols, "date", p.Date)
	cols = appendString(cols, "location", p.Location)
	cols = appendString(cols, "summary", p.Summary)
	cols = appendString(cols, "robin_group_photo_url", p.RobinGroupPhotoURL)
	cols = appendString(cols, "children_group_photo_url", p.ChildrenGroupPhotoURL)
	cols = appendString(cols, "combined_group_photo_url", p.CombinedGroupPhotoURL)
	if p.ItemsDistributed != nil {
		cols = append(cols, Column{Name: "items_distributed", Value: cleanList(*p.ItemsDistributed)})
	}
	return cols
}
