package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreboard/internal/display"
	"choreboard/internal/repository"
	"choreboard/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	server := NewServer(
		service.NewTaskService(db, taskRepo, completionRepo),
		service.NewTodayService(taskRepo, completionRepo),
		service.NewOrderService(db, taskRepo),
		display.NewController("", nil),
		nil,
	)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/tasks", map[string]any{
		"title":       "Feed the cat",
		"description": "Twice a day",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", created["status"])
	id := int(created["id"].(float64))
	require.NotZero(t, id)

	// On today's list.
	resp, err := http.Get(ts.URL + "/api/tasks/today")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	today := decode[[]map[string]any](t, resp)
	require.Len(t, today, 1)
	assert.Equal(t, "Feed the cat", today[0]["title"])
	assert.Equal(t, false, today[0]["completed_today"])

	// Complete it.
	resp = postJSON(t, fmt.Sprintf("%s/api/tasks/%d/complete", ts.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// One-time task disappears from both listings.
	resp, err = http.Get(ts.URL + "/api/tasks/today")
	require.NoError(t, err)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	resp, err = http.Get(ts.URL + "/api/tasks")
	require.NoError(t, err)
	assert.Empty(t, decode[[]map[string]any](t, resp))

	// History survives.
	resp, err = http.Get(fmt.Sprintf("%s/api/tasks/%d/history", ts.URL, id))
	require.NoError(t, err)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)
}

func TestCompleteUnknownTaskReturns404(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/tasks/9999/complete", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Task not found", body["message"])
}

func TestCreateTaskValidationReturns400(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/tasks", map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestReorderEmptyReturns400(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/tasks/reorder", map[string]any{"ids": []uint{}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSetPositionEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var ids []int
	for _, title := range []string{"a", "b", "c"} {
		resp := postJSON(t, ts.URL+"/api/tasks", map[string]any{"title": title})
		created := decode[map[string]any](t, resp)
		ids = append(ids, int(created["id"].(float64)))
	}

	resp := postJSON(t, fmt.Sprintf("%s/api/tasks/%d/position", ts.URL, ids[2]), map[string]any{"position": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	listResp, err := http.Get(ts.URL + "/api/tasks")
	require.NoError(t, err)
	tasks := decode[[]map[string]any](t, listResp)
	require.Len(t, tasks, 3)
	assert.Equal(t, float64(ids[2]), tasks[0]["id"])

	resp = postJSON(t, fmt.Sprintf("%s/api/tasks/%d/position", ts.URL, ids[0]), map[string]any{"position": 0})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetUnknownTaskReturns404(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/tasks/9999")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecurringFilterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	postJSON(t, ts.URL+"/api/tasks", map[string]any{"title": "one-time"}).Body.Close()
	postJSON(t, ts.URL+"/api/tasks", map[string]any{
		"title": "weekly", "is_recurring": true,
		"recurrence_type": "weeks", "recurrence_value": 1,
	}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/tasks/recurring")
	require.NoError(t, err)
	tasks := decode[[]map[string]any](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, "weekly", tasks[0]["title"])
}

func TestDisplayEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, action := range []string{"on", "off"} {
		resp := postJSON(t, ts.URL+"/api/display/"+action, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestPagesRender(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/", "/admin"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		body := make([]byte, 1024)
		n, _ := resp.Body.Read(body)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "page %s", path)
		assert.True(t, strings.Contains(string(body[:n]), "<!DOCTYPE html>"), "page %s", path)
	}
}
