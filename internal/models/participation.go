package models

import "time"

// ChildAttendance records that a child was present at a location on a date
type ChildAttendance struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ChildID   string    `json:"child_id"`
	Date      string    `json:"date"`
	Location  string    `json:"location"`
	DriveID   *string   `json:"drive_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordID returns the attendance record's identifier
func (a ChildAttendance) RecordID() string { return a.ID }

// AttendanceInput marks a child present
type AttendanceInput struct {
	ChildID  string  `json:"child_id"`
	Date     string  `json:"date"`
	Location string  `json:"location"`
	DriveID  *string `json:"drive_id,omitempty"`
}

// Validate checks an attendance mark before submission
func (in AttendanceInput) Validate() error {
	if err := ValidateRequired("child_id", in.ChildID); err != nil {
		return err
	}
	if err := ValidateDate("date", in.Date); err != nil {
		return err
	}
	return ValidateLocality("location", in.Location)
}

// Normalize defaults the date to today
func (in *AttendanceInput) Normalize() {
	if in.Date == "" {
		in.Date = Today()
	}
}

// RobinDrive records that a robin participated in a drive
type RobinDrive struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	RobinID             string     `json:"robin_id"`
	Date                string     `json:"date"`
	Location            string     `json:"location"`
	DriveID             *string    `json:"drive_id"`
	CommuteMethod       *string    `json:"commute_method"`
	ContributionMessage *string    `json:"contribution_message"`
	ItemsBrought        StringList `json:"items_brought"`
	AttendanceMarked    bool       `json:"attendance_marked"`
	CreatedAt           time.Time  `json:"created_at"`
}

// RecordID returns the participation record's identifier
func (d RobinDrive) RecordID() string { return d.ID }

// DriveParticipationInput records a robin's drive
type DriveParticipationInput struct {
	RobinID             string     `json:"robin_id"`
	Date                string     `json:"date"`
	Location            string     `json:"location"`
	DriveID             *string    `json:"drive_id,omitempty"`
	CommuteMethod       *string    `json:"commute_method,omitempty"`
	ContributionMessage *string    `json:"contribution_message,omitempty"`
	ItemsBrought        StringList `json:"items_brought,omitempty"`
	AttendanceMarked    bool       `json:"attendance_marked"`
}

// Validate checks a participation record before submission
func (in DriveParticipationInput) Validate() error {
	if err := ValidateRequired("robin_id", in.RobinID); err != nil {
		return err
	}
	if err := ValidateDate("date", in.Date); err != nil {
		return err
	}
	if err := ValidateLocality("location", in.Location); err != nil {
		return err
	}
	return optional(in.CommuteMethod, func(v string) error {
		if !IsCommuteMethod(v) {
			return ValidationError{Field: "commute_method", Message: "unknown commute method " + v}
		}
		return nil
	})
}

// Normalize defaults the date to today and marks attendance
func (in *DriveParticipationInput) Normalize() {
	if in.Date == "" {
		in.Date = Today()
	}
	in.ItemsBrought = cleanList(in.ItemsBrought)
	in.AttendanceMarked = true
}

// RobinUnavailability declares a robin cannot be assigned on a date
type RobinUnavailability struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	RobinID         string    `json:"robin_id"`
	UnavailableDate string    `json:"unavailable_date"`
	Reason          *string   `json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordID returns the unavailability record's identifier
func (u RobinUnavailability) RecordID() string { return u.ID }

// UnavailabilityInput declares a future unavailable date
type UnavailabilityInput struct {
	RobinID         string  `json:"robin_id"`
	UnavailableDate string  `json:"unavailable_date"`
	Reason          *string `json:"reason,omitempty"`
}

// Validate checks an unavailability declaration before submission
func (in UnavailabilityInput) Validate() error {
	if err := ValidateRequired("robin_id", in.RobinID); err != nil {
		return err
	}
	return ValidateFutureDate("unavailable_date", in.UnavailableDate)
}
