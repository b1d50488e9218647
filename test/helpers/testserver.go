package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bilca_backend/internal/auth"
	"bilca_backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

// NewTestServer serves handler over httptest. tokens must use the same secret
// as the router's auth middleware.
func NewTestServer(t *testing.T, handler http.Handler, db *gorm.DB, tokens *auth.TokenManager) *TestServer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &TestServer{Server: server, DB: db, Tokens: tokens}
}

// TokenFor mints an access token for user.
func (ts *TestServer) TokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := ts.Tokens.Generate(user.ID, string(user.Role))
	require.NoError(t, err)
	return token
}

// SendRequest sends body as JSON and returns the response with its body read.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "encode request body")
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, resBody
}

// DecodeJSON unmarshals body into a new T.
func DecodeJSON[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), "decode %s", string(body))
	return out
}
