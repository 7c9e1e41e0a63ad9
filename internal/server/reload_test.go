package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featforge/featforge/internal/registry"
	"github.com/featforge/featforge/internal/types"
)

func TestHandleRegistryBeforeFirstPass(t *testing.T) {
	reg := registry.New()
	s := NewReloadServer("localhost", 0, reg, nil)

	rec := httptest.NewRecorder()
	s.handleRegistry(rec, httptest.NewRequest(http.MethodGet, "/registry.json", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleRegistryServesCurrentSnapshot(t *testing.T) {
	reg := registry.New()
	reg.Publish(&registry.Snapshot{
		Root: "/tmp/features",
		Features: []*types.FeatureRecord{
			{ID: "checkout", Title: "Checkout"},
		},
		Navigation: []types.NavigationEntry{
			{Label: "Checkout", Path: "/checkout"},
		},
	})

	s := NewReloadServer("localhost", 0, reg, nil)
	rec := httptest.NewRecorder()
	s.handleRegistry(rec, httptest.NewRequest(http.MethodGet, "/registry.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snapshot registry.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	require.Len(t, snapshot.Features, 1)
	assert.Equal(t, "checkout", snapshot.Features[0].ID)
	require.Len(t, snapshot.Navigation, 1)
	assert.Equal(t, "/checkout", snapshot.Navigation[0].Path)
}

func dialReload(t *testing.T, s *ReloadServer) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	require.Eventually(t, func() bool {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		return len(s.conns) == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func TestClientStaysConnectedUntilBroadcast(t *testing.T) {
	reg := registry.New()
	s := NewReloadServer("localhost", 0, reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.mutex.Lock()
	s.connCtx = ctx
	s.mutex.Unlock()

	conn := dialReload(t, s)

	// The upgrade handler has long since returned; the connection must
	// survive until a pass result arrives.
	time.Sleep(300 * time.Millisecond)
	s.broadcast(ctx, &registry.Snapshot{})

	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()
	_, data, err := conn.Read(readCtx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reload"}`, string(data))
}

func TestBroadcastSendsIssuesOnAbortedPass(t *testing.T) {
	reg := registry.New()
	s := NewReloadServer("localhost", 0, reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.mutex.Lock()
	s.connCtx = ctx
	s.mutex.Unlock()

	conn := dialReload(t, s)

	s.broadcast(ctx, &registry.Snapshot{
		Aborted: true,
		Issues: []types.ValidationIssue{
			{FeatureID: "demo", Severity: types.SeverityError, Message: "boom"},
		},
	})

	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()
	_, data, err := conn.Read(readCtx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"build-error"`)
	assert.Contains(t, string(data), `"featureId":"demo"`)
}

func TestReloadMessageShape(t *testing.T) {
	payload, err := json.Marshal(reloadMessage{Type: "reload"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reload"}`, string(payload))

	payload, err = json.Marshal(reloadMessage{
		Type: "build-error",
		Issues: []types.ValidationIssue{
			{FeatureID: "demo", Severity: types.SeverityError, Message: "boom"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"type":"build-error"`)
	assert.Contains(t, string(payload), `"featureId":"demo"`)
}
