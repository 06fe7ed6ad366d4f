package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlzd/gotp"

	"github.com/securevault/authd/pkg/twofa"
	"github.com/securevault/authd/pkg/user"
)

type twofaFixture struct {
	server    *httptest.Server
	repo      *user.InMemoryRepository
	tokenAuth *jwtauth.JWTAuth
	user      user.User
}

func newTwofaFixture(t *testing.T) *twofaFixture {
	t.Helper()

	repo := user.NewInMemoryRepository()
	u, err := repo.CreateUser(context.Background(), user.CreateUserParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hashed",
		Role:     "user",
	})
	require.NoError(t, err)

	service := twofa.NewTwoFaService(repo)
	tokenAuth := jwtauth.New("HS256", []byte("access-secret"), nil)

	// Mounted the same way as in production: behind the verifier
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Mount("/", Handler(NewHandle(service)))
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &twofaFixture{server: server, repo: repo, tokenAuth: tokenAuth, user: u}
}

func (f *twofaFixture) accessToken(t *testing.T, subject string) string {
	t.Helper()

	_, tokenStr, err := f.tokenAuth.Encode(map[string]interface{}{
		"sub": subject,
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})
	require.NoError(t, err)
	return tokenStr
}

func (f *twofaFixture) post(t *testing.T, path, token string, body map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestPost2faSetupAndVerify(t *testing.T) {
	f := newTwofaFixture(t)
	token := f.accessToken(t, f.user.ID.String())

	resp, body := f.post(t, "/setup/"+f.user.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["qrCode"], "data:image/png;base64,")
	secret, _ := body["manualCode"].(string)
	require.NotEmpty(t, secret)

	passcode := gotp.NewDefaultTOTP(secret).Now()
	resp, body = f.post(t, "/verify/"+f.user.ID.String(), token, map[string]string{"token": passcode})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Two-Factor Authentication enabled!", body["message"])

	stored, err := f.repo.FindUserByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled)
}

func TestPost2faVerifyWrongPasscode(t *testing.T) {
	f := newTwofaFixture(t)
	token := f.accessToken(t, f.user.ID.String())

	resp, _ := f.post(t, "/setup/"+f.user.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := f.post(t, "/verify/"+f.user.ID.String(), token, map[string]string{"token": "000000"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid token", body["message"])
}

func TestPost2faVerifyBeforeSetup(t *testing.T) {
	f := newTwofaFixture(t)
	token := f.accessToken(t, f.user.ID.String())

	resp, body := f.post(t, "/verify/"+f.user.ID.String(), token, map[string]string{"token": "123456"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid token", body["message"])
}

func TestPost2faRejectsOtherUsersID(t *testing.T) {
	f := newTwofaFixture(t)

	// Token subject differs from the path id
	token := f.accessToken(t, uuid.New().String())

	resp, body := f.post(t, "/setup/"+f.user.ID.String(), token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden: you can only manage your own 2FA", body["message"])
}

func TestPost2faRequiresToken(t *testing.T) {
	f := newTwofaFixture(t)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/setup/"+f.user.ID.String(), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPost2faInvalidUserID(t *testing.T) {
	f := newTwofaFixture(t)
	token := f.accessToken(t, f.user.ID.String())

	resp, body := f.post(t, "/setup/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user id", body["message"])
}
