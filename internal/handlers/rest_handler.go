package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"robinhoodarmy/internal/repository"
	"robinhoodarmy/internal/service"
)

const maxRecordBody = 1 << 20 // 1MB

// RestHandler serves the per-user table endpoints
type RestHandler struct {
	tables *service.TableService
}

// NewRestHandler creates a new REST handler
func NewRestHandler(tables *service.TableService) *RestHandler {
	return &RestHandler{tables: tables}
}

// List handles GET /rest/v1/{table}?col=eq.value&order=col.desc&limit=n
func (h *RestHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())
	table := r.PathValue("table")

	opts, err := parseListOptions(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	if opts.Owner != "" && opts.Owner != userID {
		// rows of other users are never visible
		respondJSON(w, http.StatusOK, []struct{}{})
		return
	}

	rows, err := h.tables.List(r.Context(), userID, table, opts.ListOptions)
	if err != nil {
		respondWithServiceError(w, "Failed to list "+table, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// Create handles POST /rest/v1/{table}
func (h *RestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())
	table := r.PathValue("table")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBody))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large", "", nil)
		return
	}

	row, err := h.tables.Create(r.Context(), userID, table, body)
	if err != nil {
		respondWithServiceError(w, "Failed to insert into "+table, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

// Update handles PATCH /rest/v1/{table}/{id}
func (h *RestHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())
	table := r.PathValue("table")
	id := r.PathValue("id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBody))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large", "", nil)
		return
	}

	row, err := h.tables.Update(r.Context(), userID, table, id, body)
	if err != nil {
		respondWithServiceError(w, "Failed to update "+table, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

type listOptions struct {
	repository.ListOptions

	// Owner is the user_id filter sent by the client, if any
	Owner string
}

func parseListOptions(r *http.Request) (listOptions, error) {
	var opts listOptions
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "order":
			order, err := repository.ParseOrder(values[0])
			if err != nil {
				return opts, err
			}
			opts.Order = order
		case "limit":
			limit, err := strconv.Atoi(values[0])
			if err != nil || limit < 0 {
				return opts, fmt.Errorf("invalid limit %q", values[0])
			}
			opts.Limit = limit
		case "select":
			// every column is always returned
		case "user_id":
			filter, err := repository.ParseFilter(key, values[0])
			if err != nil {
				return opts, err
			}
			opts.Owner = filter.Value
		default:
			filter, err := repository.ParseFilter(key, values[0])
			if err != nil {
				return opts, err
			}
			opts.Filters = append(opts.Filters, filter)
		}
	}
	return opts, nil
}
