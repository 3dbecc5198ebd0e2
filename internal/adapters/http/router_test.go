package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	orch   *orch.Orchestrator
	cookie []*http.Cookie
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(context.Background(), app.NewConnections(), app.NewRoomManager(), app.DefaultRelayConfig(), pipeline.Silent{}, nil)
	t.Cleanup(o.Runner.Shutdown)
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}
	return &apiClient{t: t, router: SetupRouter(context.Background(), cfg, o), orch: o}
}

func (a *apiClient) do(method, path, body string) (int, map[string]any) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range a.cookie {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if cs := w.Result().Cookies(); len(cs) > 0 {
		a.cookie = cs
	}

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func TestRouter_JoinAndMatch(t *testing.T) {
	req := require.New(t)
	api := newAPI(t)

	code, body := api.do(http.MethodPost, "/api/join-room", `{"user_id":"alice","language":"en"}`)
	req.Equal(http.StatusOK, code)
	req.Equal("waiting", body["status"])
	req.NotEmpty(body["connection_id"])
	req.NotContains(body, "room_id")

	code, body = api.do(http.MethodPost, "/api/join-room", `{"user_id":"bob","language":"fr"}`)
	req.Equal(http.StatusOK, code)
	req.Equal("matched", body["status"])
	req.Equal("alice", body["partner_id"])
	req.Equal("en", body["partner_language"])

	code, body = api.do(http.MethodGet, "/api/room-stats", "")
	req.Equal(http.StatusOK, code)
	req.EqualValues(1, body["active_rooms"])
	req.EqualValues(2, body["users"])
}

func TestRouter_JoinErrors(t *testing.T) {
	req := require.New(t)
	api := newAPI(t)

	code, body := api.do(http.MethodPost, "/api/join-room", `{"user_id":`)
	req.Equal(http.StatusBadRequest, code)
	req.Contains(body, "error")

	code, _ = api.do(http.MethodPost, "/api/join-room", `{"user_id":"`+strings.Repeat("a", 65)+`"}`)
	req.Equal(http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPost, "/api/join-room", `{"user_id":"dup"}`)
	req.Equal(http.StatusOK, code)
	code, body = api.do(http.MethodPost, "/api/join-room", `{"user_id":"dup"}`)
	req.Equal(http.StatusConflict, code)
	req.Contains(body["error"], "already registered")
}

func TestRouter_Leave(t *testing.T) {
	req := require.New(t)
	api := newAPI(t)

	code, body := api.do(http.MethodDelete, "/api/leave-room/ghost", "")
	req.Equal(http.StatusNotFound, code)
	req.Equal("user not found", body["error"])

	api.do(http.MethodPost, "/api/join-room", `{"user_id":"alice","language":"en"}`)
	api.do(http.MethodPost, "/api/join-room", `{"user_id":"bob","language":"de"}`)

	code, body = api.do(http.MethodDelete, "/api/leave-room/alice", "")
	req.Equal(http.StatusOK, code)
	req.Equal("left", body["status"])
	req.NotEmpty(body["room_id"])
	req.Equal(1, api.orch.Rooms.UserCount())
}

func TestRouter_UserAndMe(t *testing.T) {
	req := require.New(t)
	api := newAPI(t)

	code, _ := api.do(http.MethodGet, "/api/me", "")
	req.Equal(http.StatusNotFound, code)

	api.do(http.MethodPost, "/api/join-room", `{"user_id":"alice","language":"hi"}`)

	code, body := api.do(http.MethodGet, "/api/me", "")
	req.Equal(http.StatusOK, code)
	req.Equal("alice", body["user"].(map[string]any)["user_id"])

	code, body = api.do(http.MethodGet, "/api/users/alice", "")
	req.Equal(http.StatusOK, code)
	req.Equal("hi", body["user"].(map[string]any)["language"])
	req.NotContains(body, "partner")

	code, _ = api.do(http.MethodGet, "/api/users/nobody", "")
	req.Equal(http.StatusNotFound, code)
}

func TestRouter_Offer(t *testing.T) {
	req := require.New(t)
	api := newAPI(t)

	code, _ := api.do(http.MethodPost, "/api/offer", `{"user_id":"alice","sdp":"v=0","type":"answer"}`)
	req.Equal(http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPost, "/api/offer", `{"user_id":"ghost","sdp":"v=0","type":"offer"}`)
	req.Equal(http.StatusNotFound, code)

	// no media transport is configured in this router
	api.do(http.MethodPost, "/api/join-room", `{"user_id":"alice","language":"en"}`)
	code, body := api.do(http.MethodPost, "/api/offer", `{"user_id":"alice","sdp":"v=0","type":"offer"}`)
	req.Equal(http.StatusInternalServerError, code)
	req.Equal("offer failed", body["error"])
}

func TestRouter_Languages(t *testing.T) {
	api := newAPI(t)
	code, body := api.do(http.MethodGet, "/api/languages", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["languages"], 9)
}
