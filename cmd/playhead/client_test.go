package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Resume(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/resume").
		ExpectMethod(http.MethodGet).
		RespondJSON(ListResumeResponse{
			Items: []ResumeItem{
				{UnitID: "cosmos-ep-3", GroupID: "cosmos", UnitTitle: "The Harmony of Worlds",
					PositionMS: 120_000, DurationMS: 600_000, Fraction: 0.2},
			},
			Limit: 20,
		}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	rail, err := client.Resume(20)
	require.NoError(t, err)
	require.Len(t, rail.Items, 1)
	assert.Equal(t, "cosmos-ep-3", rail.Items[0].UnitID)
}

func TestClient_GroupResume_NotFound(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/groups/cosmos/resume").
		RespondError(http.StatusNotFound, "NOT_FOUND", "No continuation record for group").
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GroupResume("cosmos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestClient_RemoveResume(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/resume/cosmos-ep-3").
		ExpectMethod(http.MethodDelete).
		RespondStatus(http.StatusNoContent).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.RemoveResume("cosmos-ep-3"))
}

func TestClient_SessionLoad(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/session/load").
		ExpectMethod(http.MethodPost).
		RespondJSON(SessionResponse{State: "loading", UnitID: "cosmos-ep-3"}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	session, err := client.SessionLoad("cosmos-ep-3")
	require.NoError(t, err)
	assert.Equal(t, "loading", session.State)
}

func TestClient_SessionControl_Conflict(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/session/next").
		RespondError(http.StatusConflict, "NO_NEIGHBOR", "unit has no successor").
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SessionControl("next")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no successor")
}

func TestClient_Status(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/status").
		RespondJSON(StatusResponse{Version: "1.0.0", SessionState: "playing"}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL)
	status, err := client.Status()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, "playing", status.SessionState)
}

func TestFilterItems(t *testing.T) {
	items := []ResumeItem{
		{UnitID: "cosmos-ep-3", GroupTitle: "Cosmos", UnitTitle: "The Harmony of Worlds"},
		{UnitID: "leon-1", GroupTitle: "Léon: The Professional", UnitTitle: "Léon: The Professional"},
		{UnitID: "nova-2", GroupTitle: "Nova", UnitTitle: "Origins"},
	}

	filtered := filterItems(items, "cosmos")
	require.Len(t, filtered, 1)
	assert.Equal(t, "cosmos-ep-3", filtered[0].UnitID)

	// Accent-folded match.
	filtered = filterItems(items, "leon")
	require.Len(t, filtered, 1)
	assert.Equal(t, "leon-1", filtered[0].UnitID)

	assert.Empty(t, filterItems(items, "breaking bad"))
}

func TestFormatPosition(t *testing.T) {
	assert.Equal(t, "2:00", formatPosition(120_000))
	assert.Equal(t, "0:05", formatPosition(5_000))
	assert.Equal(t, "1:01:05", formatPosition(3_665_000))
}
