package signup

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignupServer(t *testing.T) *httptest.Server {
	t.Helper()

	service, _, _ := newSignupFixture(t)
	server := httptest.NewServer(Handler(NewHandle(service)))
	t.Cleanup(server.Close)
	return server
}

func postRegister(t *testing.T, server *httptest.Server, body map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/register", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestRegisterUserEndpoint(t *testing.T) {
	server := newSignupServer(t)

	resp, body := postRegister(t, server, map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully. Verification email sent.", body["message"])

	u, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", u["email"])
	assert.Equal(t, false, u["isVerified"])
	// Sensitive fields never serialize
	assert.NotContains(t, u, "password")
	assert.NotContains(t, u, "resetOtp")
	assert.NotContains(t, u, "twoFactorSecret")
}

func TestRegisterUserMissingFields(t *testing.T) {
	server := newSignupServer(t)

	resp, body := postRegister(t, server, map[string]string{
		"name":  "Alice",
		"email": "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Name, email, and password are required", body["message"])
}

func TestRegisterUserValidationFields(t *testing.T) {
	server := newSignupServer(t)

	resp, body := postRegister(t, server, map[string]string{
		"name":     "Al",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid registration request", body["message"])

	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	server := newSignupServer(t)

	resp, _ := postRegister(t, server, map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := postRegister(t, server, map[string]string{
		"name":     "Mallory",
		"email":    "alice@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already exists", body["message"])
}
