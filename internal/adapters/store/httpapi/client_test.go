package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

func TestClient_CreateLink(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody dto.CreateExerciseLinkRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(link.ExerciseLink{
			ID:               "link-1",
			SourceExerciseID: "ex-1",
			TargetExerciseID: gotBody.TargetExerciseID,
			Type:             link.TypeWarmup,
			IsActive:         true,
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	created, err := client.CreateLink(context.Background(), "ex-1", dto.CreateExerciseLinkRequest{
		TargetExerciseID: "ex-2",
		LinkType:         "Warmup",
		DisplayOrder:     1,
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/exercises/ex-1/links", gotPath)
	assert.Equal(t, "ex-2", gotBody.TargetExerciseID)
	assert.Equal(t, "link-1", created.ID)
}

func TestClient_GetLinksQuery(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.ExerciseLinksResponse{
			ExerciseID:   "ex-1",
			ExerciseName: "Barbell Squat",
			TotalCount:   0,
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	warmup := link.TypeWarmup
	resp, err := client.GetLinks(context.Background(), "ex-1", dto.LinkQuery{
		Type:           &warmup,
		IncludeDetails: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Barbell Squat", resp.ExerciseName)
	assert.Equal(t, []string{"Warmup"}, gotQuery["linkType"])
	assert.Equal(t, []string{"true"}, gotQuery["includeExerciseDetails"])
}

func TestClient_GetSuggestedLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/exercises/ex-1/links/suggested", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]*link.ExerciseLink{
			{ID: "s1", TargetExerciseID: "ex-9", Type: link.TypeAlternative},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	got, err := client.GetSuggestedLinks(context.Background(), "ex-1", 5)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestClient_DeleteLinkNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/exercises/ex-1/links/link-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	assert.NoError(t, client.DeleteLink(context.Background(), "ex-1", "link-1"))
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   dto.StoreErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, dto.StoreErrUnauthorized},
		{"forbidden", http.StatusForbidden, dto.StoreErrForbidden},
		{"not found", http.StatusNotFound, dto.StoreErrNotFound},
		{"request timeout", http.StatusRequestTimeout, dto.StoreErrTimeout},
		{"rate limited", http.StatusTooManyRequests, dto.StoreErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, dto.StoreErrUnavailable},
		{"server error", http.StatusInternalServerError, dto.StoreErrServer},
		{"bad request", http.StatusBadRequest, dto.StoreErrInvalid},
		{"conflict", http.StatusConflict, dto.StoreErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"message":"nope"}`, tt.status)
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL})
			err := client.DeleteLink(context.Background(), "ex-1", "link-1")

			require.Error(t, err)
			assert.Equal(t, tt.kind, dto.StoreErrorKindOf(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("unreachable host maps to network", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "http://127.0.0.1:0", Timeout: time.Second})
		err := client.DeleteLink(context.Background(), "ex-1", "link-1")

		require.Error(t, err)
		assert.Equal(t, dto.StoreErrNetwork, dto.StoreErrorKindOf(err))
	})

	t.Run("canceled context maps to canceled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		client := NewClient(Config{BaseURL: server.URL})
		err := client.DeleteLink(ctx, "ex-1", "link-1")

		require.Error(t, err)
		assert.Equal(t, dto.StoreErrCanceled, dto.StoreErrorKindOf(err))
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		client := NewClient(Config{BaseURL: server.URL})
		err := client.DeleteLink(ctx, "ex-1", "link-1")

		require.Error(t, err)
		assert.Equal(t, dto.StoreErrTimeout, dto.StoreErrorKindOf(err))
	})
}

func TestClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.GetLinks(context.Background(), "ex-1", dto.LinkQuery{})

	require.Error(t, err)
	assert.Equal(t, dto.StoreErrServer, dto.StoreErrorKindOf(err))
}
