package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"go-api-template/internal/model"
	"go-api-template/pkg/apierror"
)

func translate(t *testing.T, err error) (int, model.ErrorResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	writeError(rec, req, err)

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestWriteErrorTranslatesUniqueViolation(t *testing.T) {
	status, body := translate(t, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "email already exists", body.Message)
	require.Equal(t, []string{"email already exists"}, body.Errors["email"])
}

func TestWriteErrorTranslatesForeignKeyViolation(t *testing.T) {
	status, body := translate(t, &pgconn.PgError{Code: "23503", ConstraintName: "users_org_fk"})

	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Related record not found", body.Message)
}

func TestWriteErrorTranslatesNotFound(t *testing.T) {
	status, body := translate(t, model.ErrUserNotFound)

	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "User not found", body.Message)
	require.Nil(t, body.Errors)
}

func TestWriteErrorPassesThroughAPIErrors(t *testing.T) {
	status, body := translate(t, apierror.Forbidden("CSRF token is invalid"))
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "CSRF token is invalid", body.Message)
	require.Nil(t, body.Errors)

	status, body = translate(t, apierror.Validation(map[string][]string{"email": {"Invalid email"}}))
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, []string{"Invalid email"}, body.Errors["email"])
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	status, body := translate(t, errors.New("pq: connection reset by peer"))

	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal server error", body.Message)
	require.Equal(t, "/auth/register", body.Path)
	require.Equal(t, http.MethodPost, body.Method)
	require.Nil(t, body.Errors)
}

func TestConstraintField(t *testing.T) {
	require.Equal(t, "email", constraintField("users_email_key"))
	require.Equal(t, "email", constraintField("users_email_idx"))
	require.Equal(t, "field", constraintField(""))
}
