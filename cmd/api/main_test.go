// cmd/api/main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librekeep/internal/catalog"
	"librekeep/internal/circulation"
	"librekeep/internal/identity"
	"librekeep/internal/membership"
	"librekeep/internal/store"
)

// newTestServer assembles the full router on the in-memory store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := store.NewMemory()
	tokens := identity.NewTokenIssuer("integration-secret")

	identitySvc := identity.NewService(st.Librarians, identity.AdminConfig{
		Username: "admin",
		Password: "admin-pass",
	}, tokens)
	catalogSvc := catalog.NewService(st, nil)
	circulationSvc := circulation.NewService(st, nil, circulation.Options{})
	membershipSvc := membership.NewService(st, tokens, nil)

	router := newRouter(handlers{
		identity:    identity.NewHandler(identitySvc),
		catalog:     catalog.NewHandler(catalogSvc),
		circulation: circulation.NewHandler(circulationSvc),
		membership:  membership.NewHandler(membershipSvc),
	}, tokens)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func loginAdmin(t *testing.T, base string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaffCatalogFlow(t *testing.T) {
	server := newTestServer(t)
	admin := loginAdmin(t, server.URL)

	// Unauthenticated requests are rejected.
	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/books/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/books/", admin, map[string]any{
		"title": "A Wizard of Earthsea", "category": "Fantasy", "price": 6.99,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	book := body["book"].(map[string]any)
	bookID := book["id"].(string)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/authors/", admin, map[string]any{
		"authorName":  "Ursula K. Le Guin",
		"authorEmail": "ursula@example.com",
		"books":       []string{"A Wizard of Earthsea", "The Tombs of Atuan"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	author := body["data"].(map[string]any)
	assert.Len(t, author["books"], 2)

	// The pre-existing unauthored book was linked rather than duplicated.
	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/books/"+bookID, admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, author["id"], body["author"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/counts", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMemberLendingFlow(t *testing.T) {
	server := newTestServer(t)
	admin := loginAdmin(t, server.URL)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/books/", admin, map[string]any{
		"title": "The Lathe of Heaven", "category": "SF", "price": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookID := body["book"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/members/register", "", map[string]any{
		"username": "george", "password": "orr-dreams", "name": "George Orr",
		"email": "george@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	member := body["token"].(string)

	// Registration mirrored the member into the borrowers list.
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/borrowers/", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/members/borrow/"+bookID, member, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Book borrowed successfully", body["message"])

	// A staff account cannot use member lending endpoints.
	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/members/borrow/"+bookID, admin, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Nobody else can take the held book.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/members/register", "", map[string]any{
		"username": "heather", "password": "lelache99", "name": "Heather Lelache",
		"email": "heather@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	other := body["token"].(string)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/members/borrow/"+bookID, other, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/members/my-books", member, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/members/return/"+bookID, member, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/members/borrow/"+bookID, other, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeskLendingFlow(t *testing.T) {
	server := newTestServer(t)
	admin := loginAdmin(t, server.URL)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/books/", admin, map[string]any{
		"title": "Always Coming Home",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookID := body["book"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/borrowers/", admin, map[string]any{
		"borrowerName": "Desk Patron", "borrowerEmail": "patron@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	borrowerID := body["borrower"].(map[string]any)["id"].(string)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/books/checkout", admin, map[string]string{
		"bookId": bookID, "borrowerId": borrowerID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// While held at the desk, the borrower record cannot be deleted.
	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/borrowers/"+borrowerID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/books/checkin", admin, map[string]string{
		"bookId": bookID, "borrowerId": borrowerID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, server.URL+"/api/borrowers/"+borrowerID, admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLibrarianLifecycle(t *testing.T) {
	server := newTestServer(t)
	admin := loginAdmin(t, server.URL)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/librarians", admin, map[string]string{
		"username": "morgan", "password": "shelving1", "name": "Morgan", "email": "morgan@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	librarianID := body["librarian"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"username": "morgan", "password": "shelving1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	librarian := body["token"].(string)

	// Librarians hold staff powers but not admin ones.
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/members/", librarian, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/auth/librarians", librarian, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Deactivation locks the account out.
	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/auth/librarians/"+librarianID, admin, map[string]any{
		"isActive": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"username": "morgan", "password": "shelving1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMemberProfileAndPassword(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/members/register", "", map[string]any{
		"username": "tenar", "password": "atuan-tombs", "name": "Tenar",
		"email": "tenar@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["token"].(string)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/members/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tenar", body["username"])

	resp, _ = doJSON(t, http.MethodPut, server.URL+"/api/members/change-password", token, map[string]string{
		"currentPassword": "atuan-tombs", "newPassword": "goha-farm1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/members/login", "", map[string]string{
		"username": "tenar", "password": "goha-farm1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyEndpoint(t *testing.T) {
	server := newTestServer(t)
	admin := loginAdmin(t, server.URL)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/auth/verify", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["valid"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/auth/verify", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
