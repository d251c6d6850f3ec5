package memory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Add(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": "mem-1", "memory": "I prefer morning study", "user_id": "student"}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key")
	rec, err := client.Add(context.Background(), "student", "I prefer morning study")
	require.NoError(t, err)

	assert.Equal(t, "/v1/memories/", gotPath)
	assert.Equal(t, "Token test-key", gotAuth)
	assert.Equal(t, "student", gotPayload["user_id"])

	messages, ok := gotPayload["messages"].([]any)
	require.True(t, ok, "payload carries the fact as a message list")
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "I prefer morning study", msg["content"])

	assert.Equal(t, "mem-1", rec.ID)
	assert.Equal(t, "I prefer morning study", rec.Text)
	assert.Equal(t, "student", rec.UserID)
}

func TestClient_Add_EmptyResponseKeepsFact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	rec, err := client.Add(context.Background(), "student", "some fact")
	require.NoError(t, err)
	assert.Equal(t, "some fact", rec.Text)
	assert.Equal(t, "student", rec.UserID)
}

func TestClient_Search(t *testing.T) {
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/memories/search/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		// Relevance order, not chronological.
		w.Write([]byte(`{"results": [
			{"id": "b", "memory": "second stored, most relevant"},
			{"id": "a", "memory": "first stored"}
		]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	records, err := client.Search(context.Background(), "student", "study preferences", 5)
	require.NoError(t, err)

	assert.Equal(t, "study preferences", gotPayload["query"])
	assert.Equal(t, "student", gotPayload["user_id"])
	assert.Equal(t, float64(5), gotPayload["limit"])

	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID, "service relevance order is preserved")
	assert.Equal(t, "student", records[0].UserID, "user id filled in when the wire omits it")
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/memories/", r.URL.Path)
		assert.Equal(t, "student", r.URL.Query().Get("user_id"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		// A bare array without the results wrapper also decodes.
		w.Write([]byte(`[{"id": "a", "memory": "fact one"}, {"id": "b", "memory": "fact two"}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	records, err := client.List(context.Background(), "student", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fact one", records[0].Text)
}

func TestClient_Update(t *testing.T) {
	var gotMethod, gotPath string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Write([]byte(`{"id": "mem-1", "memory": "I prefer evening study"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	rec, err := client.Update(context.Background(), "mem-1", "I prefer evening study")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/v1/memories/mem-1/", gotPath)
	assert.Equal(t, "I prefer evening study", gotPayload["text"])
	assert.Equal(t, "mem-1", rec.ID)
	assert.Equal(t, "I prefer evening study", rec.Text)
}

func TestClient_Update_UnknownRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	_, err := client.Update(context.Background(), "nope", "text")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Delete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	require.NoError(t, client.Delete(context.Background(), "mem-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/v1/memories/mem-1/", gotPath)
}

func TestClient_DeleteAll(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotQuery = r.URL.Query().Get("user_id")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(srv.URL, "key")
	require.NoError(t, client.DeleteAll(context.Background(), "student"))
	assert.Equal(t, "student", gotQuery)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: ErrAuthFailed},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrAuthFailed},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := New(srv.URL, "key")
			_, err := client.List(context.Background(), "student", 10)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens on the URL anymore

	client := New(srv.URL, "key")
	_, err := client.Search(context.Background(), "student", "anything", 5)
	assert.True(t, errors.Is(err, ErrUnavailable), "network failure maps to ErrUnavailable, got %v", err)
}
