package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(NewStore())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func registerUser(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/users/register", gin.H{
		"username": username, "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	return resp["data"].(map[string]any)["userId"].(string)
}

func createRoom(t *testing.T, r *gin.Engine, name string, maxPlayers int) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/create", gin.H{
		"name": name, "maxPlayers": maxPlayers,
	})
	require.Equal(t, http.StatusOK, w.Code)
	room := resp["data"].(map[string]any)["room"].(map[string]any)
	return room["roomId"].(string)
}

func TestHealth(t *testing.T) {
	r := newTestRouter()
	w, resp := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "game-session-service", resp["service"])
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter()
	userID := registerUser(t, r, "alice")
	assert.Contains(t, userID, "user_")

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, userID, data["userId"])
	assert.Equal(t, 1000.0, data["balance"])
	assert.Contains(t, data["token"], "session_")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := newTestRouter()
	registerUser(t, r, "alice")

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/users/register", gin.H{
		"username": "alice", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r := newTestRouter()
	registerUser(t, r, "alice")

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users/login", gin.H{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletBalanceRoundTrip(t *testing.T) {
	r := newTestRouter()
	userID := registerUser(t, r, "alice")

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/wallet/update-balance", gin.H{
		"userId": userID, "balance": 750.5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/wallet/balance/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 750.5, resp["data"].(map[string]any)["balance"])
}

func TestWalletBalanceZeroAccepted(t *testing.T) {
	r := newTestRouter()
	userID := registerUser(t, r, "alice")

	// Zero is a legitimate balance, not a missing field.
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/wallet/update-balance", gin.H{
		"userId": userID, "balance": 0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	_, resp := doJSON(t, r, http.MethodGet, "/api/v1/wallet/balance/"+userID, nil)
	assert.Equal(t, 0.0, resp["data"].(map[string]any)["balance"])
}

func TestWalletUpdateUnknownUser(t *testing.T) {
	r := newTestRouter()
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/wallet/update-balance", gin.H{
		"userId": "ghost", "balance": 10,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWalletBalanceDefaultsForUnknownUser(t *testing.T) {
	r := newTestRouter()
	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/wallet/balance/unknown", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1000.0, resp["data"].(map[string]any)["balance"])
}

func TestLobbyRoomLifecycle(t *testing.T) {
	r := newTestRouter()
	userID := registerUser(t, r, "alice")
	roomID := createRoom(t, r, "Room A", 2)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/"+roomID+"/join", gin.H{"userId": userID})
	require.Equal(t, http.StatusOK, w.Code)
	room := resp["data"].(map[string]any)["room"].(map[string]any)
	assert.Len(t, room["players"], 1)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/"+roomID+"/join", gin.H{"userId": userID})
	assert.Equal(t, http.StatusBadRequest, w.Code, "double join rejected")

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/lobby/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := resp["data"].(map[string]any)["rooms"].([]any)
	require.Len(t, rooms, 1)
	assert.Equal(t, "waiting", rooms[0].(map[string]any)["status"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/update-status", gin.H{
		"roomId": roomID, "status": "playing",
	})
	require.Equal(t, http.StatusOK, w.Code)

	_, resp = doJSON(t, r, http.MethodGet, "/api/v1/lobby/rooms", nil)
	rooms = resp["data"].(map[string]any)["rooms"].([]any)
	assert.Equal(t, "playing", rooms[0].(map[string]any)["status"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/"+roomID+"/leave", gin.H{"userId": userID})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/lobby/rooms/"+roomID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, resp = doJSON(t, r, http.MethodGet, "/api/v1/lobby/rooms", nil)
	assert.Empty(t, resp["data"].(map[string]any)["rooms"])
}

func TestLobbyRoomFull(t *testing.T) {
	r := newTestRouter()
	u1 := registerUser(t, r, "alice")
	u2 := registerUser(t, r, "bob")
	u3 := registerUser(t, r, "carol")
	roomID := createRoom(t, r, "Tiny", 2)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/"+roomID+"/join", gin.H{"userId": u1})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/"+roomID+"/join", gin.H{"userId": u2})
	require.Equal(t, http.StatusOK, w.Code)
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/"+roomID+"/join", gin.H{"userId": u3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrRoomFull.Error(), resp["message"])
}

func TestLobbyRoomNotFound(t *testing.T) {
	r := newTestRouter()
	userID := registerUser(t, r, "alice")

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/nope/join", gin.H{"userId": userID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/lobby/rooms/update-status", gin.H{
		"roomId": "nope", "status": "playing",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/lobby/rooms/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
