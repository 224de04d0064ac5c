package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/service"
)

// FunctionError is the body returned when a function fails
type FunctionError struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// FunctionsHandler dispatches POST /functions/v1/{name}
type FunctionsHandler struct {
	procedures *service.ProcedureService
	content    *service.ContentService
	email      *service.EmailService
	debug      bool
}

// NewFunctionsHandler creates a new functions handler
func NewFunctionsHandler(procedures *service.ProcedureService, content *service.ContentService, email *service.EmailService, debug bool) *FunctionsHandler {
	return &FunctionsHandler{
		procedures: procedures,
		content:    content,
		email:      email,
		debug:      debug,
	}
}

// Invoke runs the named function with the request body as its payload
func (h *FunctionsHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	userID := GetUserIDFromContext(r.Context())
	name := r.PathValue("name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBody))
	if err != nil {
		respondFunctionError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if h.debug {
		log.Printf("[DEBUG] function %s invoked by %s: %s", name, userID, body)
	}

	switch name {
	case models.FnGenerateContent:
		h.generateContent(w, r, userID, body)
	case models.FnSendConfirmationEmail:
		h.sendConfirmation(w, r, body)
	case models.FnSetInitialDriveCount:
		var req models.InitialDriveCountRequest
		if !decodeFunctionBody(w, body, &req) {
			return
		}
		robin, err := h.procedures.SetInitialDriveCount(r.Context(), userID, req)
		respondFunction(w, name, robin, err)
	case models.FnCanEditRobinProfile:
		var req models.RobinRequest
		if !decodeFunctionBody(w, body, &req) {
			return
		}
		perm, err := h.procedures.CanEditRobinProfile(r.Context(), userID, req)
		respondFunction(w, name, perm, err)
	case models.FnTodaysAssignedRobins:
		assignments, err := h.procedures.TodaysAssignedRobins(r.Context(), GetRoleFromContext(r.Context()))
		respondFunction(w, name, assignments, err)
	case models.FnIncrementCounter:
		var req models.IncrementRequest
		if !decodeFunctionBody(w, body, &req) {
			return
		}
		record, err := h.procedures.IncrementCounter(r.Context(), userID, req)
		respondFunction(w, name, record, err)
	default:
		respondFunctionError(w, http.StatusNotFound, "Function not found: "+name)
	}
}

func (h *FunctionsHandler) generateContent(w http.ResponseWriter, r *http.Request, userID string, body []byte) {
	var req models.GenerateRequest
	if !decodeFunctionBody(w, body, &req) {
		return
	}

	item, err := h.content.Generate(r.Context(), userID, req)
	if err != nil {
		var cerr *service.ContentError
		if errors.As(err, &cerr) {
			respondFunctionError(w, http.StatusInternalServerError, cerr.Message)
			return
		}
		log.Printf("Error in generate-content function: %v", err)
		respondFunctionError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, models.GenerateResult{Content: item.Content, Success: true})
}

func (h *FunctionsHandler) sendConfirmation(w http.ResponseWriter, r *http.Request, body []byte) {
	var req models.ConfirmationRequest
	if !decodeFunctionBody(w, body, &req) {
		return
	}

	result, err := h.email.SendConfirmation(r.Context(), req)
	if err != nil {
		log.Printf("Error in send-confirmation-email function: %v", err)
		respondFunctionError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func decodeFunctionBody(w http.ResponseWriter, body []byte, v interface{}) bool {
	if err := json.Unmarshal(body, v); err != nil {
		respondFunctionError(w, http.StatusInternalServerError, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondFunction(w http.ResponseWriter, name string, result interface{}, err error) {
	if err != nil {
		if errors.Is(err, service.ErrAdminRequired) {
			respondFunctionError(w, http.StatusForbidden, err.Error())
			return
		}
		var verr models.ValidationError
		if !errors.As(err, &verr) {
			log.Printf("Error in %s function: %v", name, err)
		}
		respondFunctionError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func respondFunctionError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, FunctionError{Error: message, Success: false})
}
