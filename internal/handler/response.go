package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"go-api-template/internal/model"
	"go-api-template/pkg/apierror"
)

// Postgres error codes translated into the wire taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func writeSuccess(w http.ResponseWriter, status int, code string, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.SuccessResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// writeError is the single translation point from internal failures to the
// wire error taxonomy. Only unanticipated errors are logged as server
// errors; every other class is an expected client-facing outcome.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		writeAPIError(w, apiErr)
		return
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			writeAPIError(w, apierror.Conflict(constraintField(pgErr.ConstraintName)))
			return
		case pgForeignKeyViolation:
			writeAPIError(w, apierror.BadRequest("Related record not found"))
			return
		}
	}

	if errors.Is(err, model.ErrUserNotFound) {
		writeAPIError(w, apierror.NotFound("User not found"))
		return
	}

	slog.Error("internal error", "error", err.Error(), "path", r.URL.Path, "method", r.Method)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Message: "Internal server error",
		Path:    r.URL.Path,
		Method:  r.Method,
	})
}

func writeAPIError(w http.ResponseWriter, apiErr *apierror.APIError) {
	body := model.ErrorResponse{Message: apiErr.Message}

	// Field errors only belong to the validation/conflict classes; the
	// not-found and auth classes stay a bare message.
	switch apiErr.HTTPStatus {
	case http.StatusUnprocessableEntity, http.StatusBadRequest, http.StatusConflict:
		body.Errors = apiErr.Errors
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(body)
}

// constraintField recovers the column name from a constraint like
// "users_email_key".
func constraintField(constraint string) string {
	field := strings.TrimPrefix(constraint, "users_")
	field = strings.TrimSuffix(field, "_key")
	field = strings.TrimSuffix(field, "_idx")
	if field == "" {
		return "field"
	}
	return field
}
