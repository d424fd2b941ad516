// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"rfid-logbook/internal/importer"
	"rfid-logbook/internal/services"
)

// Handler serves the logbook REST API
type Handler struct {
	service  services.LogbookService
	validate *validator.Validate
}

// NewHandler creates a new API handler
func NewHandler(service services.LogbookService) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

// Response is the envelope of successful replies
type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("Failed to encode response: %v", err)
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

func writeMessage(w http.ResponseWriter, code int, message string, data interface{}) {
	writeJSON(w, code, Response{Message: message, Data: data})
}

// writeError maps service errors to status codes
func writeError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	var ierr *importer.Error

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
	case errors.As(err, &ierr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ierr.Message})
	default:
		log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// urlParam returns the unescaped path parameter. chi matches on the raw
// path, so an encoded tag id like 04%3AA1 arrives still escaped.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return value
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

// decode reads a JSON body into the struct dst and validates it
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if !readJSON(w, r, dst) {
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(msgs, ", ")
}

// HealthHandler reports liveness
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
