package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/store"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/testutil"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/uploads"
)

func newTestServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	db := testutil.OpenDB(t, name)

	storage, err := uploads.NewStorage(t.TempDir())
	require.NoError(t, err)

	eventService := services.NewEventService(store.NewEventStore(db))
	userService := services.NewUserService(store.NewUserStore(db), eventService)
	catService := services.NewCatService(store.NewCatStore(db))
	tokens := auth.NewService("router-test-secret")

	srv := httptest.NewServer(NewRouter(tokens, userService, catService, eventService, storage, "test"))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp, decoded
}

func registerUser(t *testing.T, srv *httptest.Server, username, password, role string) int64 {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/user", "", map[string]interface{}{
		"name":     strings.ToUpper(username[:1]) + username[1:] + " Example",
		"username": username,
		"email":    username + "@example.com",
		"password": password,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	data := body["data"].(map[string]interface{})
	return int64(data["user_id"].(float64))
}

func loginUser(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func TestRegisterLoginMeFlow(t *testing.T) {
	srv := newTestServer(t, "router_flow")

	registerUser(t, srv, "alice", "Correct1Horse", "user")
	token := loginUser(t, srv, "alice", "Correct1Horse")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "user", user["role"])
}

func TestResponsesNeverContainPassword(t *testing.T) {
	srv := newTestServer(t, "router_nopassword")

	registerUser(t, srv, "alice", "Correct1Horse", "user")
	token := loginUser(t, srv, "alice", "Correct1Horse")

	for _, path := range []string{"/api/v1/user", "/api/v1/user/1", "/api/v1/auth/me"} {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
		assert.NotContains(t, strings.ToLower(string(raw)), "password", "path %s", path)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t, "router_badlogin")

	registerUser(t, srv, "alice", "Correct1Horse", "user")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "fail", body["status"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"username": "ghost", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, "router_authz")

	id := registerUser(t, srv, "alice", "Correct1Horse", "user")

	resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/user/%d", srv.URL, id), "", map[string]string{"name": "New Name"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/user/%d", srv.URL, id), "garbage-token", map[string]string{"name": "New Name"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserUpdateForbiddenForOthers(t *testing.T) {
	srv := newTestServer(t, "router_forbidden")

	aliceID := registerUser(t, srv, "alice", "Correct1Horse", "user")
	registerUser(t, srv, "bob", "Correct1Horse", "user")
	bobToken := loginUser(t, srv, "bob", "Correct1Horse")

	resp, body := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/user/%d", srv.URL, aliceID), bobToken,
		map[string]string{"name": "Hacked Name"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "fail", body["status"])

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/user/%d", srv.URL, aliceID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	srv := newTestServer(t, "router_duplicate")

	registerUser(t, srv, "alice", "Correct1Horse", "user")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/user", "", map[string]string{
		"name":     "Alice Clone",
		"username": "alice",
		"email":    "clone@example.com",
		"password": "Correct1Horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "fail", body["status"])
}

func TestRegistrationValidation(t *testing.T) {
	srv := newTestServer(t, "router_validation")

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"short password", map[string]interface{}{"name": "Al Example", "username": "al_example", "email": "al@example.com", "password": "Ab1"}},
		{"weak password", map[string]interface{}{"name": "Al Example", "username": "al_example", "email": "al@example.com", "password": "alllowercase"}},
		{"bad email", map[string]interface{}{"name": "Al Example", "username": "al_example", "email": "not-an-email", "password": "Correct1Horse"}},
		{"bad username chars", map[string]interface{}{"name": "Al Example", "username": "al example!", "email": "al@example.com", "password": "Correct1Horse"}},
		{"bad role", map[string]interface{}{"name": "Al Example", "username": "al_example", "email": "al@example.com", "password": "Correct1Horse", "role": "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/user", "", tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "fail", body["status"])
			assert.Contains(t, body["message"], "Validation failed")
		})
	}
}

func TestCatLifecycleWithOwnershipCollapse(t *testing.T) {
	srv := newTestServer(t, "router_cats")

	aliceID := registerUser(t, srv, "alice", "Correct1Horse", "user")
	registerUser(t, srv, "bob", "Correct1Horse", "user")
	aliceToken := loginUser(t, srv, "alice", "Correct1Horse")
	bobToken := loginUser(t, srv, "bob", "Correct1Horse")

	// Creating a cat requires a token.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cat", "", map[string]interface{}{
		"name": "Whiskers", "birthdate": "2021-06-30", "weight": 4.2, "owner": aliceID,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/cat", aliceToken, map[string]interface{}{
		"name": "Whiskers", "birthdate": "2021-06-30", "weight": 4.2, "owner": aliceID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	catID := int64(body["data"].(map[string]interface{})["cat_id"].(float64))

	// Future birthdates are rejected.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/cat", aliceToken, map[string]interface{}{
		"name": "TimeTraveler", "birthdate": "2999-01-01", "weight": 4.2, "owner": aliceID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown owners are rejected by the reference check.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/cat", aliceToken, map[string]interface{}{
		"name": "Ghost", "birthdate": "2021-06-30", "weight": 4.2, "owner": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The public read joins the owner's name.
	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/cat/%d", srv.URL, catID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Alice Example", body["data"].(map[string]interface{})["owner_name"])

	// Bob updating Alice's cat: collapsed not-found-or-forbidden.
	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/cat/%d", srv.URL, catID), bobToken,
		map[string]interface{}{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "fail", body["status"])

	// Alice updates her own cat.
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/cat/%d", srv.URL, catID), aliceToken,
		map[string]interface{}{"name": "Sir Whiskers"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Listing by user shows the renamed cat.
	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/cat/user/%d", srv.URL, aliceID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cats := body["data"].([]interface{})
	require.Len(t, cats, 1)
	assert.Equal(t, "Sir Whiskers", cats[0].(map[string]interface{})["cat_name"])

	// Deleting the owner cascades to the cat.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/user/%d", srv.URL, aliceID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/cat/%d", srv.URL, catID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "fail", body["status"])
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	srv := newTestServer(t, "router_admin")

	registerUser(t, srv, "alice", "Correct1Horse", "user")
	registerUser(t, srv, "root", "Correct1Horse", "admin")
	aliceToken := loginUser(t, srv, "alice", "Correct1Horse")
	rootToken := loginUser(t, srv, "root", "Correct1Horse")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/events", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/events", rootToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	// The registrations above are on the audit trail.
	events := body["data"].([]interface{})
	assert.NotEmpty(t, events)
}
