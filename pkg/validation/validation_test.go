package validation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := ValidationError{
		Field:   "name",
		Value:   "",
		Message: "field is required",
	}

	expected := "validation error on field 'name': field is required (got: )"
	assert.Equal(t, expected, err.Error())
}

func TestValidationErrors(t *testing.T) {
	errors := ValidationErrors{
		{Field: "name", Value: "", Message: "field is required"},
		{Field: "displayOrder", Value: -1, Message: "must be positive"},
	}

	expected := "validation error on field 'name': field is required (got: ); validation error on field 'displayOrder': must be positive (got: -1)"
	assert.Equal(t, expected, errors.Error())
}

type createLinkBody struct {
	TargetExerciseID string `json:"targetExerciseId" validate:"required,exercise_id"`
	LinkType         string `json:"linkType" validate:"required,link_type"`
	DisplayOrder     int    `json:"displayOrder" validate:"gte=0"`
}

func TestValidateWithPlayground(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		err := ValidateWithPlayground(createLinkBody{
			TargetExerciseID: "ex-2",
			LinkType:         "Warmup",
			DisplayOrder:     1,
		})
		assert.NoError(t, err)
	})

	t.Run("link type is case-insensitive", func(t *testing.T) {
		err := ValidateWithPlayground(createLinkBody{
			TargetExerciseID: "ex-2",
			LinkType:         "COOLDOWN",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown link type", func(t *testing.T) {
		err := ValidateWithPlayground(createLinkBody{
			TargetExerciseID: "ex-2",
			LinkType:         "Superset",
		})
		require.Error(t, err)

		validationErrors, ok := err.(ValidationErrors)
		require.True(t, ok)
		require.Len(t, validationErrors, 1)
		assert.Equal(t, "linkType", validationErrors[0].Field)
		assert.Contains(t, validationErrors[0].Message, "Warmup, Cooldown, Alternative")
	})

	t.Run("malformed exercise ID", func(t *testing.T) {
		err := ValidateWithPlayground(createLinkBody{
			TargetExerciseID: "ex 2!",
			LinkType:         "Warmup",
		})
		require.Error(t, err)

		validationErrors, ok := err.(ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, "targetExerciseId", validationErrors[0].Field)
	})

	t.Run("negative display order", func(t *testing.T) {
		err := ValidateWithPlayground(createLinkBody{
			TargetExerciseID: "ex-2",
			LinkType:         "Warmup",
			DisplayOrder:     -1,
		})
		require.Error(t, err)

		validationErrors, ok := err.(ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, "displayOrder", validationErrors[0].Field)
	})
}

func TestCustomTagFunctions(t *testing.T) {
	type roleBody struct {
		Role string `json:"role" validate:"required,muscle_role"`
	}
	assert.NoError(t, ValidateWithPlayground(roleBody{Role: "Primary"}))
	assert.NoError(t, ValidateWithPlayground(roleBody{Role: "secondary"}))
	assert.Error(t, ValidateWithPlayground(roleBody{Role: "Tertiary"}))

	type idBody struct {
		ID string `json:"id" validate:"required,uuid4"`
	}
	assert.NoError(t, ValidateWithPlayground(idBody{ID: "650e8400-e29b-41d4-a716-446655440000"}))
	assert.Error(t, ValidateWithPlayground(idBody{ID: "not-a-uuid"}))
}

func TestValidateWithConfig(t *testing.T) {
	type manyFields struct {
		A string `validate:"required"`
		B string `validate:"required"`
		C string `validate:"required"`
	}

	err := ValidateWithConfig(manyFields{}, &ValidationConfig{MaxErrors: 2})
	require.Error(t, err)

	validationErrors, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, validationErrors, 2)
}

func TestMarshalValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "linkType", Value: "Superset", Message: "must be a valid link type (Warmup, Cooldown, Alternative)"},
	}

	data, err := MarshalValidationErrors(errs)
	require.NoError(t, err)

	parsed, err := UnmarshalValidationErrors(data)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "linkType", parsed[0].Field)
}

func TestMiddleware_ValidateJSON(t *testing.T) {
	middleware := NewMiddleware(nil)
	handler := middleware.ValidateJSON(createLinkBody{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid body passes through", func(t *testing.T) {
		body, _ := json.Marshal(createLinkBody{TargetExerciseID: "ex-2", LinkType: "Warmup"})
		req := httptest.NewRequest(http.MethodPost, "/api/exercises/ex-1/links", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid body is rejected", func(t *testing.T) {
		body, _ := json.Marshal(createLinkBody{TargetExerciseID: "ex-2", LinkType: "Superset"})
		req := httptest.NewRequest(http.MethodPost, "/api/exercises/ex-1/links", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "linkType")
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/exercises/ex-1/links", bytes.NewReader([]byte("{nope")))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMiddleware_ValidateQueryParams(t *testing.T) {
	middleware := NewMiddleware(nil)
	handler := middleware.ValidateQueryParams(map[string]string{
		"exerciseId": "exercise_id",
		"count":      "numeric",
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid params", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links?exerciseId=ex-1&count=5", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid exercise ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links?exerciseId=ex%201!", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric count", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links?count=five", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
