package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTP(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", Validation("missing required fields: %s", "phone"), http.StatusBadRequest, "missing required fields: phone"},
		{"wrapped validation", fmt.Errorf("create: %w", Validation("bad")), http.StatusBadRequest, "bad"},
		{"not found", ErrNotFound, http.StatusNotFound, "not found"},
		{"wrapped not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, "not found"},
		{"backend", errors.New(`duplicate key value violates unique constraint "patients_mrn_key"`), http.StatusInternalServerError,
			`duplicate key value violates unique constraint "patients_mrn_key"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var he *echo.HTTPError
			require.ErrorAs(t, ToHTTP(tt.err), &he)
			assert.Equal(t, tt.wantCode, he.Code)
			assert.Equal(t, tt.wantMsg, he.Message)
		})
	}
}

func TestNotFoundIfNoRows(t *testing.T) {
	assert.ErrorIs(t, NotFoundIfNoRows(pgx.ErrNoRows), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, NotFoundIfNoRows(other))
	assert.NoError(t, NotFoundIfNoRows(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(Validation("x")))
	assert.False(t, IsValidation(ErrNotFound))
}

func TestErrorHandler_RendersEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized"), c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestErrorHandler_PlainError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(errors.New("connection reset"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"connection reset"}`, rec.Body.String())
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB(nil))
	assert.ErrorIs(t, FromDB(pgx.ErrNoRows), ErrNotFound)

	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503", ConstraintName: "appointments_patient_id_fkey"})
	err := FromDB(fk)
	require.True(t, IsValidation(err))
	assert.Equal(t, "referenced record does not exist (appointments_patient_id_fkey)", err.Error())

	dup := FromDB(&pgconn.PgError{Code: "23505", ConstraintName: "patients_mrn_key"})
	assert.Equal(t, "duplicate value violates patients_mrn_key", dup.Error())

	check := FromDB(&pgconn.PgError{Code: "23514", Message: `new row violates check constraint "appointments_duration_minutes_check"`})
	assert.True(t, IsValidation(check))

	other := &pgconn.PgError{Code: "57P01", Message: "terminating connection"}
	assert.Same(t, other, FromDB(other))
}
