package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryGenerator/internal/config"
)

func newBoards(t *testing.T, handler http.HandlerFunc) *Boards {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewBoards(config.AzureConfig{
		OrgURL:  server.URL,
		Project: "demo",
		Token:   "pat-token",
	})
}

func TestGetEpic(t *testing.T) {
	t.Parallel()

	boards := newBoards(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/demo/_apis/wit/workitems/42", r.URL.Path)
		assert.Equal(t, "7.0", r.URL.Query().Get("api-version"))
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")

		_, _ = w.Write([]byte(`{"id": 42, "fields": {"System.Title": "Wallet Top-Up Feature"}}`))
	})

	epic, err := boards.GetEpic(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 42, epic.ID)
	assert.Equal(t, "Wallet Top-Up Feature", epic.Title)
}

func TestGetEpicMissingTitle(t *testing.T) {
	t.Parallel()

	boards := newBoards(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 42, "fields": {}}`))
	})

	_, err := boards.GetEpic(context.Background(), 42)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no title")
}

func TestGetEpicNonSuccessStatus(t *testing.T) {
	t.Parallel()

	boards := newBoards(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := boards.GetEpic(context.Background(), 42)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCreateStoryBuildsJSONPatch(t *testing.T) {
	t.Parallel()

	var ops []patchOp
	boards := newBoards(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/demo/_apis/wit/workitems/$Issue", r.URL.Path)
		assert.Equal(t, "application/json-patch+json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ops))

		_, _ = w.Write([]byte(`{"id": 101, "_links": {"html": {"href": "https://dev.example.org/items/101"}}}`))
	})

	item, err := boards.CreateStory(context.Background(),
		"User Story: Top Up Wallet", "As a user...<br/>• Balance updates", 42)

	require.NoError(t, err)
	assert.Equal(t, 101, item.ID)
	assert.Equal(t, "https://dev.example.org/items/101", item.URL)

	require.Len(t, ops, 3)
	assert.Equal(t, "/fields/System.Title", ops[0].Path)
	assert.Equal(t, "User Story: Top Up Wallet", ops[0].Value)
	assert.Equal(t, "/fields/System.Description", ops[1].Path)
	assert.Equal(t, "/relations/-", ops[2].Path)

	relation, ok := ops[2].Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "System.LinkTypes.Hierarchy-Reverse", relation["rel"])
	assert.Contains(t, relation["url"], "/demo/_apis/wit/workItems/42")
}

func TestCreateStoryWithoutEpicOmitsRelation(t *testing.T) {
	t.Parallel()

	var ops []patchOp
	boards := newBoards(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ops))
		_, _ = w.Write([]byte(`{"id": 102}`))
	})

	_, err := boards.CreateStory(context.Background(), "User Story: View Balance", "body", 0)

	require.NoError(t, err)
	require.Len(t, ops, 2)
}

func TestCreateStorySurfacesRemoteFailure(t *testing.T) {
	t.Parallel()

	boards := newBoards(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "field validation failed"}`))
	})

	_, err := boards.CreateStory(context.Background(), "User Story: Broken", "body", 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "field validation failed")
}

func TestCheckAuth(t *testing.T) {
	t.Parallel()

	boards := newBoards(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_apis/projects", r.URL.Path)
		_, _ = w.Write([]byte(`{"count": 1, "value": []}`))
	})

	assert.NoError(t, boards.CheckAuth(context.Background()))
}

func TestBasicAuthEncodesEmptyUser(t *testing.T) {
	t.Parallel()

	// base64(":token")
	assert.Equal(t, "Basic OnRva2Vu", basicAuth("token"))
}
