package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

// Today returns the current calendar date in DateLayout
func Today() string {
	return time.Now().Format(DateLayout)
}

// StringList is a list of free-text values stored as a JSON array column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringList: unsupported source type %T", src)
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		*l = nil
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	*l = items
	return nil
}

// Contains reports whether any item contains sub, ignoring case
func (l StringList) Contains(sub string) bool {
	sub = strings.ToLower(sub)
	for _, item := range l {
		if strings.Contains(strings.ToLower(item), sub) {
			return true
		}
	}
	return false
}

// FlexInt accepts either a JSON number or a numeric JSON string. Any other
// value decodes to zero so range validation reports it.
type FlexInt int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if val, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = FlexInt(val)
		}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Column is a single column assignment produced by a patch
type Column struct {
	Name  string
	Value interface{}
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}
