package browse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientListDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "oficio", r.URL.Query().Get("kind"))
		assert.Equal(t, "received", r.URL.Query().Get("direction"))
		assert.Equal(t, "numero", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "100", r.URL.Query().Get("page_size"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":1,"kind":"oficio","direction":"received","number":"00100-2024"}],"total":1,"page":1,"page_size":100}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")
	list, err := client.ListDocuments(context.Background(), DocumentQuery{
		Kind:      "oficio",
		Direction: "received",
		SortBy:    "numero",
		Page:      1,
		PageSize:  100,
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "00100-2024", list.Items[0].Number)
	assert.Equal(t, 1, list.Total)
}

func TestClientDocumentNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents/numbers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"numbers":{"7":"00123-2024","9":"00125-2024"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	numbers, err := client.DocumentNumbers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00123-2024", numbers[7])
	assert.Equal(t, "00125-2024", numbers[9])
}

func TestClientUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "expired")
	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"fresh-token","username":"erivadeneira","name":"Elisa","admin":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	user, err := client.Login(context.Background(), "erivadeneira", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Elisa", user.Name)
	assert.True(t, user.Admin)
	assert.Equal(t, "fresh-token", client.token)
}

func TestClientBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.ListContracts(context.Background(), ContractQuery{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
