package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/seed"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	hub    *Hub
	store  *store.Store
	auth   *middleware.Authenticator
	srv    *httptest.Server
	cancel context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f, err := seed.Default()
	require.NoError(t, err)
	data, err := f.StoreData(bcrypt.MinCost)
	require.NoError(t, err)

	st := store.New(data)
	hub := NewHub(st, logger.NewNop(), metrics.NewTestMetrics())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	auth := middleware.NewAuthenticator("test-secret", logger.NewNop())
	srv := httptest.NewServer(HandleWebSocket(hub, auth))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &harness{hub: hub, store: st, auth: auth, srv: srv, cancel: cancel}
}

func (h *harness) dial(t *testing.T, userID, role string) *gws.Conn {
	t.Helper()
	token, err := h.auth.IssueToken(models.User{ID: userID, Email: userID + "@example.com", Role: role})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "?token=" + token
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.hub.IsUserConnected(userID) }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readJSON(t *testing.T, conn *gws.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHandleWebSocket_RejectsMissingToken(t *testing.T) {
	h := newHarness(t)

	resp, err := http.Get(h.srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(h.srv.URL + "?token=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublish_ReachesAdminsAndNamedDriver(t *testing.T) {
	h := newHarness(t)
	admin := h.dial(t, "ADM-001", models.RoleAdmin)
	assigned := h.dial(t, "D-101", models.RoleDriver)
	other := h.dial(t, "D-102", models.RoleDriver)
	assert.Equal(t, 3, h.hub.GetClientCount())

	event := events.New(events.TypeLoadAssigned, map[string]string{"load_id": "L-5001"}, "D-101")
	require.NoError(t, h.hub.Publish(context.Background(), event))

	msg := readJSON(t, admin)
	assert.Equal(t, events.TypeLoadAssigned, msg["type"])
	assert.NotContains(t, msg, "DriverID")

	msg = readJSON(t, assigned)
	assert.Equal(t, events.TypeLoadAssigned, msg["type"])

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestPing_RepliesWithPong(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "D-103", models.RoleDriver)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	msg := readJSON(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestLocationUpdate_StoresPositionAndNotifiesAdmins(t *testing.T) {
	h := newHarness(t)
	admin := h.dial(t, "ADM-001", models.RoleAdmin)
	driver := h.dial(t, "D-101", models.RoleDriver)

	require.NoError(t, driver.WriteJSON(map[string]interface{}{
		"type": "location_update",
		"data": map[string]interface{}{"latitude": 41.59, "longitude": -87.34, "location": "Gary, IN"},
	}))

	msg := readJSON(t, admin)
	assert.Equal(t, "driver_location_update", msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, "D-101", data["driver_id"])
	assert.Equal(t, "Gary, IN", data["current_location"])

	d, err := h.store.Driver("D-101")
	require.NoError(t, err)
	assert.InDelta(t, 41.59, d.Coordinates.Lat, 1e-9)
	assert.InDelta(t, -87.34, d.Coordinates.Lng, 1e-9)
	assert.Equal(t, "Gary, IN", d.CurrentLocation)
}

func TestLocationUpdate_IgnoredFromAdmins(t *testing.T) {
	h := newHarness(t)
	admin := h.dial(t, "ADM-001", models.RoleAdmin)

	require.NoError(t, admin.WriteJSON(map[string]interface{}{
		"type": "location_update",
		"data": map[string]interface{}{"latitude": 1.0, "longitude": 2.0},
	}))
	require.NoError(t, admin.WriteJSON(map[string]string{"type": "ping"}))

	// the pong is the only reply
	msg := readJSON(t, admin)
	assert.Equal(t, "pong", msg["type"])
}

func TestReconnect_ReplacesPreviousSession(t *testing.T) {
	h := newHarness(t)
	first := h.dial(t, "D-104", models.RoleDriver)
	second := h.dial(t, "D-104", models.RoleDriver)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	h.hub.BroadcastToUser("D-104", map[string]string{"type": "hello"})
	msg := readJSON(t, second)
	assert.Equal(t, "hello", msg["type"])
	assert.Equal(t, 1, h.hub.GetClientCount())
}

func TestRun_ClosesClientsOnShutdown(t *testing.T) {
	h := newHarness(t)
	conn := h.dial(t, "D-101", models.RoleDriver)

	h.cancel()
	select {
	case <-h.hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, h.hub.GetClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// broadcasts after shutdown must not block
	h.hub.BroadcastToUser("D-101", map[string]string{"type": "late"})
}
