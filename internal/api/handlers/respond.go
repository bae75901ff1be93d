// Package handlers общие помощники HTTP-обработчиков: разбор тела и JSON-ответы.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const maxBodyBytes = 1 << 20

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnavailable   = "сервис временно недоступен, повторите запрос"
)

// ConflictInterval занятый интервал в ответе 409
type ConflictInterval struct {
	BookingID int64  `json:"bookingId,omitempty"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error     string            `json:"error"`
	Conflict  *ConflictInterval `json:"conflict,omitempty"`
	From      string            `json:"currentStatus,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

// DecodeJSON читает тело запроса; неизвестные поля запрещены
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// PathInt64 извлекает положительный int64 из переменной пути
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", name, raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return v, nil
}

// RespondJSON пишет v как JSON с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondConflict 409 с интервалом, который занял слот
func RespondConflict(w http.ResponseWriter, message string, conflict *domain.ConflictError) {
	resp := ErrorResponse{Error: message}
	if conflict != nil {
		resp.Conflict = &ConflictInterval{
			BookingID: conflict.BookingID,
			Start:     conflict.Interval.StartTime().String(),
			End:       conflict.Interval.EndTime().String(),
		}
	}
	RespondJSON(w, http.StatusConflict, resp)
}

// RespondStateError 422 для недопустимого перехода статуса
func RespondStateError(w http.ResponseWriter, message string, stateErr *domain.StateError) {
	resp := ErrorResponse{Error: message}
	if stateErr != nil {
		resp.From = stateErr.From.String()
	}
	RespondJSON(w, http.StatusUnprocessableEntity, resp)
}

// RespondUnavailable 503: итог операции неизвестен, запрос можно повторить
func RespondUnavailable(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	RespondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: msgUnavailable, Retryable: true})
}
