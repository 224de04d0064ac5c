package models

// Remote function names
const (
	FnGenerateContent       = "generate-content"
	FnSendConfirmationEmail = "send-confirmation-email"
	FnSetInitialDriveCount  = "set-initial-drive-count"
	FnCanEditRobinProfile   = "can-edit-robin-profile"
	FnTodaysAssignedRobins  = "todays-assigned-robins"
	FnIncrementCounter      = "increment-counter"
)

// RoleAdmin is the token role allowed to run the cross-user procedures
const RoleAdmin = "admin"

// IncrementRequest asks the backend to bump a parent counter by one
type IncrementRequest struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

// InitialDriveCountRequest sets a robin's historical drive count
type InitialDriveCountRequest struct {
	RobinID string `json:"robinId"`
	Count   int    `json:"count"`
}

// Validate checks the request
func (r InitialDriveCountRequest) Validate() error {
	if err := ValidateRequired("robinId", r.RobinID); err != nil {
		return err
	}
	if r.Count < 0 {
		return ValidationError{Field: "count", Message: "must not be negative"}
	}
	return nil
}

// RobinRequest identifies a robin for a procedure call
type RobinRequest struct {
	RobinID string `json:"robinId"`
}

// Permission is a yes/no answer from a procedure
type Permission struct {
	Allowed bool `json:"allowed"`
}

// TodayAssignment is one robin assigned for today and whether they declared
// themselves unavailable
type TodayAssignment struct {
	RobinID          string `json:"robin_id"`
	RobinName        string `json:"robin_name"`
	AssignedLocation string `json:"assigned_location"`
	IsUnavailable    bool   `json:"is_unavailable"`
}

// ConfirmationRequest asks for a welcome email to be sent
type ConfirmationRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	ConfirmationURL string `json:"confirmationUrl"`
}

// ConfirmationResult is the response of the confirmation email function
type ConfirmationResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Template string `json:"template,omitempty"`
	Error    string `json:"error,omitempty"`
}
