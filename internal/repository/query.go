package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"robinhoodarmy/internal/models"
)

var (
	// ErrNotFound is returned when no row with the id exists for the owner
	ErrNotFound = errors.New("record not found")
	// ErrInvalidColumn is returned for filters or orderings on unknown columns
	ErrInvalidColumn = errors.New("invalid column")
	// ErrNoChanges is returned for updates that set no columns
	ErrNoChanges = errors.New("no fields to update")
	// ErrDriveCountSet is returned when a robin already has drives counted
	ErrDriveCountSet = errors.New("robin already has drives counted")
)

// Filter restricts a listing to rows where Column equals Value
type Filter struct {
	Column string
	Value  string
}

// Order sorts a listing by a column
type Order struct {
	Column string
	Desc   bool
}

// ListOptions controls filtering and ordering of a listing.
// Rows are always scoped to the owner; newest first when Order is nil.
type ListOptions struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

// ParseFilter parses a "column=eq.value" style query parameter
func ParseFilter(column, expr string) (Filter, error) {
	op, value, ok := strings.Cut(expr, ".")
	if !ok || op != "eq" {
		return Filter{}, fmt.Errorf("%w: unsupported filter %q on %s", ErrInvalidColumn, expr, column)
	}
	return Filter{Column: column, Value: value}, nil
}

// ParseOrder parses a "column.desc" or "column.asc" ordering
func ParseOrder(expr string) (*Order, error) {
	column, dir, ok := strings.Cut(expr, ".")
	if !ok {
		return &Order{Column: expr}, nil
	}
	switch dir {
	case "asc":
		return &Order{Column: column}, nil
	case "desc":
		return &Order{Column: column, Desc: true}, nil
	}
	return nil, fmt.Errorf("%w: unsupported order direction %q", ErrInvalidColumn, dir)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func columnSet(columns []string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return set
}

// selectQuery builds an owner-scoped SELECT for table
func selectQuery(table string, columns []string, userID string, opts ListOptions) (string, []interface{}, error) {
	allowed := columnSet(columns)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	sb.WriteString(" WHERE user_id = ?")
	args := []interface{}{userID}

	for _, f := range opts.Filters {
		if !allowed[f.Column] || f.Column == "user_id" {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, table, f.Column)
		}
		sb.WriteString(" AND ")
		sb.WriteString(f.Column)
		sb.WriteString(" = ?")
		args = append(args, filterValue(f.Value))
	}

	order := opts.Order
	if order == nil {
		order = &Order{Column: "created_at", Desc: true}
	}
	if !allowed[order.Column] {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, table, order.Column)
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(order.Column)
	if order.Desc {
		sb.WriteString(" DESC")
	}
	// Stable order for rows created in the same instant
	if order.Column != "id" {
		sb.WriteString(", id")
	}

	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(opts.Limit))
	}

	return sb.String(), args, nil
}

// filterValue converts boolean literals so they compare against boolean columns
func filterValue(v string) interface{} {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// insertQuery builds an INSERT for the given columns
func insertQuery(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
}

// updateQuery builds an owner-scoped UPDATE that also bumps updated_at
func updateQuery(table string, cols []models.Column, updatedAt interface{}, userID, id string) (string, []interface{}, error) {
	if len(cols) == 0 {
		return "", nil, ErrNoChanges
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+3)
	for _, c := range cols {
		sets = append(sets, c.Name+" = ?")
		args = append(args, c.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id, userID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", table, strings.Join(sets, ", "))
	return query, args, nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
