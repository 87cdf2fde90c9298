package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/mocks"
	"github.com/phrazzld/silabas-api/internal/service/wordengine"
	"github.com/phrazzld/silabas-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListConsonantsSeedsFirst(t *testing.T) {
	t.Parallel()

	b, err := domain.NewConsonant("b", "Be")
	require.NoError(t, err)

	var order []string
	consonants := &mocks.MockConsonantService{
		SeedConsonantsFn: func(context.Context) (int, error) {
			order = append(order, "seed")
			return 12, nil
		},
		ListConsonantsFn: func(context.Context) ([]*domain.Consonant, error) {
			order = append(order, "list")
			return []*domain.Consonant{b}, nil
		},
	}
	handler := NewCatalogHandler(consonants, &mocks.MockGenerator{}, quietLogger())

	rec := httptest.NewRecorder()
	handler.ListConsonants(rec, httptest.NewRequest(http.MethodGet, "/api/consonants", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"seed", "list"}, order)

	got := decodeBody[[]domain.Consonant](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Letter)
	assert.Equal(t, "Be", got[0].Name)
}

func TestListConsonantsSeedFailure(t *testing.T) {
	t.Parallel()

	consonants := &mocks.MockConsonantService{DefaultError: errors.New("disk I/O error")}
	handler := NewCatalogHandler(consonants, &mocks.MockGenerator{}, quietLogger())

	rec := httptest.NewRecorder()
	handler.ListConsonants(rec, httptest.NewRequest(http.MethodGet, "/api/consonants", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load consonants", decodeBody[shared.ErrorResponse](t, rec).Error)
}

func TestCreateConsonant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    any
		serviceErr error
		wantStatus int
		wantLetter string
	}{
		{"created", CreateConsonantRequest{Letter: "ñ", Name: "Eñe"}, nil, http.StatusCreated, "Ñ"},
		{"missing name", CreateConsonantRequest{Letter: "j"}, nil, http.StatusBadRequest, ""},
		{"two letters", CreateConsonantRequest{Letter: "ch", Name: "Che"}, nil, http.StatusBadRequest, ""},
		{"duplicate", CreateConsonantRequest{Letter: "b", Name: "Be"}, store.ErrLetterExists, http.StatusConflict, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			consonants := &mocks.MockConsonantService{DefaultError: tc.serviceErr}
			handler := NewCatalogHandler(consonants, &mocks.MockGenerator{}, quietLogger())

			rec := httptest.NewRecorder()
			handler.CreateConsonant(rec, newJSONRequest(t, http.MethodPost, "/api/consonants", tc.payload,
				domain.Authenticated{UserID: uuid.New(), Role: domain.RoleAdmin}))

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantLetter != "" {
				assert.Equal(t, tc.wantLetter, decodeBody[domain.Consonant](t, rec).Letter)
			}
		})
	}
}

func TestGenerateWords(t *testing.T) {
	t.Parallel()

	consonantID := uuid.New()

	tests := []struct {
		name        string
		query       string
		generateErr error
		wantStatus  int
		wantOptions *wordengine.Options
		wantFields  []string
	}{
		{
			name:        "all filters",
			query:       "?consonantId=" + consonantID.String() + "&syllableCount=2&difficulty=3&maxWords=5",
			wantStatus:  http.StatusOK,
			wantOptions: &wordengine.Options{ConsonantID: consonantID, SyllableCount: 2, Difficulty: 3, MaxWords: 5},
		},
		{
			name:        "only consonant",
			query:       "?consonantId=" + consonantID.String(),
			wantStatus:  http.StatusOK,
			wantOptions: &wordengine.Options{ConsonantID: consonantID},
		},
		{
			name:       "missing consonant",
			query:      "?syllableCount=2",
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"consonantId"},
		},
		{
			name:       "non numeric filters",
			query:      "?consonantId=" + consonantID.String() + "&syllableCount=two&maxWords=x",
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"syllableCount", "maxWords"},
		},
		{
			name:        "options rejected by the generator",
			query:       "?consonantId=" + consonantID.String() + "&maxWords=99",
			generateErr: domain.NewValidationError("maxWords", "must be between 1 and 15", nil),
			wantStatus:  http.StatusBadRequest,
			wantFields:  []string{"maxWords"},
		},
		{
			name:        "unknown consonant",
			query:       "?consonantId=" + consonantID.String(),
			generateErr: store.ErrConsonantNotFound,
			wantStatus:  http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			generator := mocks.NewMockGeneratorWithDefaultWords(&domain.Consonant{ID: consonantID, Letter: "B", Name: "Be"})
			generator.Err = tc.generateErr
			handler := NewCatalogHandler(&mocks.MockConsonantService{}, generator, quietLogger())

			rec := httptest.NewRecorder()
			handler.GenerateWords(rec, httptest.NewRequest(http.MethodGet, "/api/words"+tc.query, nil))

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())

			if tc.wantOptions != nil {
				opts, ok := generator.LastOptions()
				require.True(t, ok)
				assert.Equal(t, *tc.wantOptions, opts)
				words := decodeBody[[]domain.Word](t, rec)
				assert.Len(t, words, 3)
			}
			if tc.wantFields != nil {
				resp := decodeBody[shared.ErrorResponse](t, rec)
				fields := make([]string, 0, len(resp.Details))
				for _, f := range resp.Details {
					fields = append(fields, f.Field)
				}
				assert.Equal(t, tc.wantFields, fields)
			}
		})
	}
}
