package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/realtime"
	"github.com/anonto42/instaclone/backend/internal/testutil"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Port:           "0",
		Env:            "test",
		JWTSecret:      "router-test-secret",
		JWTTTL:         time.Hour,
		SessionCookie:  "session",
		AllowedOrigins: "*",
		MaxUploadBytes: 1 << 20,
		RealtimeDriver: config.RealtimeMemory,
		Log:            logger.Config{ServiceName: "instaclone-test"},
	}

	e := echo.New()
	e.HideBanner = true
	SetupMiddleware(e, cfg)
	SetupRoutes(e, Deps{
		Config:   cfg,
		DB:       testutil.NewTestDB(t),
		Registry: realtime.NewMemoryRegistry(),
		Clock:    testutil.FixedClock(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func signup(t *testing.T, srv *httptest.Server, username string) session {
	t.Helper()
	resp, env := call(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error.Message)
	var s session
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := signup(t, srv, "alice")
	assert.NotEmpty(t, alice.Token)

	resp, env := call(t, srv, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice", "email": "alice2@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeDuplicate, env.Error.Code)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// The session cookie alone authenticates.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/profile", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	cookieResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	cookieResp.Body.Close()
	assert.Equal(t, http.StatusOK, cookieResp.StatusCode)

	resp, env = call(t, srv, http.MethodGet, "/api/v1/profile", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile models.UserProfile
	decode(t, env, &profile)
	assert.Equal(t, "alice", profile.Username)

	resp, env = call(t, srv, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "alice@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, env.Error.Code)

	resp, _ = call(t, srv, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodPost, "/api/v1/auth/firebase-login", "", map[string]string{"id_token": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestErrorEnvelope(t *testing.T) {
	srv := newTestServer(t)
	alice := signup(t, srv, "alice")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
		code   string
	}{
		{"missing credentials", http.MethodGet, "/api/v1/feed", "", nil, http.StatusUnauthorized, models.CodeUnauthorized},
		{"bad token", http.MethodGet, "/api/v1/feed", "not-a-token", nil, http.StatusUnauthorized, models.CodeUnauthorized},
		{"invalid email", http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"username": "bob", "email": "bob", "password": "password123"}, http.StatusBadRequest, models.CodeValidation},
		{"unknown post", http.MethodGet, "/api/v1/posts/999", alice.Token, nil, http.StatusNotFound, models.CodeNotFound},
		{"non-numeric id", http.MethodGet, "/api/v1/posts/abc", alice.Token, nil, http.StatusBadRequest, models.CodeValidation},
		{"follow self", http.MethodPost, "/api/v1/users/" + alice.User.ID + "/follow", alice.Token, nil, http.StatusBadRequest, models.CodeValidation},
		{"unknown route", http.MethodGet, "/nope", "", nil, http.StatusNotFound, models.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, env := call(t, srv, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestPostLikeEndpoints(t *testing.T) {
	srv := newTestServer(t)
	owner := signup(t, srv, "owner")
	fan := signup(t, srv, "fan")

	resp, env := call(t, srv, http.MethodPost, "/api/v1/posts", owner.Token, map[string]interface{}{
		"media":      []string{"https://cdn.example.com/a.jpg"},
		"media_type": "image",
		"caption":    "hi",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Error.Message)
	var post models.EnrichedPost
	decode(t, env, &post)

	likePath := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)
	var state struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}

	for i := 0; i < 2; i++ {
		_, env = call(t, srv, http.MethodPut, likePath, fan.Token, nil)
		decode(t, env, &state)
		assert.True(t, state.Liked)
		assert.Equal(t, int64(1), state.LikesCount)
	}

	_, env = call(t, srv, http.MethodPost, likePath, fan.Token, nil)
	decode(t, env, &state)
	assert.False(t, state.Liked)
	assert.Zero(t, state.LikesCount)

	_, env = call(t, srv, http.MethodDelete, likePath, fan.Token, nil)
	decode(t, env, &state)
	assert.False(t, state.Liked)

	_, env = call(t, srv, http.MethodGet, "/api/v1/feed", fan.Token, nil)
	var feed []models.EnrichedPost
	decode(t, env, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, "hi", feed[0].Caption)

	resp, _ = call(t, srv, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), fan.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = call(t, srv, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) realtime.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var event realtime.Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestWebSocketMessaging(t *testing.T) {
	srv := newTestServer(t)
	alice := signup(t, srv, "alice")
	bob := signup(t, srv, "bob")

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "userId": bob.User.ID, "token": bob.Token}))
	assert.Equal(t, realtime.EventAuthOK, readEvent(t, conn).Type)

	resp, env := call(t, srv, http.MethodPost, "/api/v1/messages", alice.Token, map[string]string{
		"receiver_id": bob.User.ID,
		"content":     "hey bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sent struct {
		Delivered bool `json:"delivered"`
	}
	decode(t, env, &sent)
	assert.True(t, sent.Delivered)

	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventNewMessage, event.Type)
	assert.Equal(t, "hey bob", event.Data.(map[string]interface{})["content"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "receiverId": alice.User.ID, "content": "hi alice"}))
	event = readEvent(t, conn)
	assert.Equal(t, realtime.EventMessageSent, event.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "message", "receiverId": alice.User.ID, "content": " "}))
	event = readEvent(t, conn)
	assert.Equal(t, realtime.EventError, event.Type)

	_, env = call(t, srv, http.MethodGet, "/api/v1/messages/"+bob.User.ID, alice.Token, nil)
	var thread []models.Message
	decode(t, env, &thread)
	require.Len(t, thread, 2)
	assert.Equal(t, "hi alice", thread[1].Content)
}

func TestWebSocketRejectsMismatchedUser(t *testing.T) {
	srv := newTestServer(t)
	alice := signup(t, srv, "alice")

	conn := dialWS(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "auth", "userId": "someone-else", "token": alice.Token}))

	event := readEvent(t, conn)
	assert.Equal(t, realtime.EventError, event.Type)
	assert.Equal(t, models.CodeForbidden, event.Data.(map[string]interface{})["code"])

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
