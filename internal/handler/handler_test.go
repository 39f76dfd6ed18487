package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/phonebook-dev/phonebook-service/internal/middleware"
	"github.com/phonebook-dev/phonebook-service/internal/models"
	"github.com/phonebook-dev/phonebook-service/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	registerUser *models.User
	registerErr  error

	loginToken string
	loginUser  *models.User
	loginErr   error

	contact    *models.Contact
	contacts   []models.Contact
	stats      *models.ContactStats
	contactErr error
	deleteErr  error

	lastOwnerID   int64
	lastContactID int64
	lastQuery     string
	lastInput     service.ContactInput
}

func (s *stubService) Register(username, password string) (*models.User, error) {
	return s.registerUser, s.registerErr
}

func (s *stubService) Login(username, password string) (string, *models.User, error) {
	return s.loginToken, s.loginUser, s.loginErr
}

func (s *stubService) CreateContact(ownerID int64, in service.ContactInput) (*models.Contact, error) {
	s.lastOwnerID, s.lastInput = ownerID, in
	return s.contact, s.contactErr
}

func (s *stubService) ListContacts(ownerID int64) ([]models.Contact, error) {
	s.lastOwnerID = ownerID
	return s.contacts, s.contactErr
}

func (s *stubService) GetContact(ownerID, contactID int64) (*models.Contact, error) {
	s.lastOwnerID, s.lastContactID = ownerID, contactID
	return s.contact, s.contactErr
}

func (s *stubService) SearchContacts(ownerID int64, query string) ([]models.Contact, error) {
	s.lastOwnerID, s.lastQuery = ownerID, query
	return s.contacts, s.contactErr
}

func (s *stubService) UpdateContact(ownerID, contactID int64, in service.ContactInput) (*models.Contact, error) {
	s.lastOwnerID, s.lastContactID, s.lastInput = ownerID, contactID, in
	return s.contact, s.contactErr
}

func (s *stubService) DeleteContact(ownerID, contactID int64) error {
	s.lastOwnerID, s.lastContactID = ownerID, contactID
	return s.deleteErr
}

func (s *stubService) ContactStats(ownerID int64) (*models.ContactStats, error) {
	s.lastOwnerID = ownerID
	return s.stats, s.contactErr
}

func newTestHandler(svc ContactService) *Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHandler(svc, logger)
}

func jsonRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authenticated(req *http.Request, userID int64) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestRegisterHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubService{registerUser: &models.User{ID: 1, Username: "alice"}}
		h := newTestHandler(svc)

		rec := httptest.NewRecorder()
		h.Register(rec, jsonRequest(http.MethodPost, "/register", `{"username":"alice","password":"pw1"}`))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"alice"`)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc := &stubService{registerErr: service.ErrDuplicateUsername}
		h := newTestHandler(svc)

		rec := httptest.NewRecorder()
		h.Register(rec, jsonRequest(http.MethodPost, "/register", `{"username":"alice","password":"pw2"}`))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing fields rejected before the service", func(t *testing.T) {
		h := newTestHandler(&stubService{})

		rec := httptest.NewRecorder()
		h.Register(rec, jsonRequest(http.MethodPost, "/register", `{"username":"alice"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password is required")
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("returns token", func(t *testing.T) {
		svc := &stubService{loginToken: "tok", loginUser: &models.User{ID: 1, Username: "alice"}}
		h := newTestHandler(svc)

		rec := httptest.NewRecorder()
		h.Login(rec, jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token":"tok"`)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &stubService{loginErr: service.ErrInvalidCredentials}
		h := newTestHandler(svc)

		rec := httptest.NewRecorder()
		h.Login(rec, jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCreateContactHandler(t *testing.T) {
	t.Run("owner comes from the token context", func(t *testing.T) {
		svc := &stubService{contact: &models.Contact{ID: 1, OwnerID: 42, Name: "Bob", Phone: "555-1234"}}
		h := newTestHandler(svc)

		body := `{"name":"Bob","phone":"555-1234","category":"Friend","owner_id":99}`
		rec := httptest.NewRecorder()
		req := authenticated(jsonRequest(http.MethodPost, "/contacts", body), 42)
		h.CreateContact(rec, req)

		// owner_id in the body is an unknown field, not an override
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body = `{"name":"Bob","phone":"555-1234","category":"Friend"}`
		rec = httptest.NewRecorder()
		h.CreateContact(rec, authenticated(jsonRequest(http.MethodPost, "/contacts", body), 42))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, int64(42), svc.lastOwnerID)
		assert.Equal(t, "Bob", svc.lastInput.Name)
		assert.Equal(t, "Friend", svc.lastInput.Category)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h := newTestHandler(&stubService{})

		rec := httptest.NewRecorder()
		h.CreateContact(rec, jsonRequest(http.MethodPost, "/contacts", `{"name":"Bob","phone":"555-1234"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing phone", func(t *testing.T) {
		h := newTestHandler(&stubService{})

		rec := httptest.NewRecorder()
		h.CreateContact(rec, authenticated(jsonRequest(http.MethodPost, "/contacts", `{"name":"Bob"}`), 42))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "phone is required")
	})
}

func TestListContactsHandler(t *testing.T) {
	svc := &stubService{contacts: []models.Contact{
		{ID: 1, OwnerID: 42, Name: "Alice", Phone: "555-0001"},
		{ID: 2, OwnerID: 42, Name: "Bob", Phone: "555-1234"},
	}}
	h := newTestHandler(svc)

	rec := httptest.NewRecorder()
	h.ListContacts(rec, authenticated(httptest.NewRequest(http.MethodGet, "/contacts", nil), 42))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.lastOwnerID)

	var resp struct {
		Contacts []models.Contact `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Contacts, 2)
	assert.Equal(t, "Alice", resp.Contacts[0].Name)
}

func TestSearchContactsHandler(t *testing.T) {
	svc := &stubService{contacts: []models.Contact{}}
	h := newTestHandler(svc)

	rec := httptest.NewRecorder()
	h.SearchContacts(rec, authenticated(httptest.NewRequest(http.MethodGet, "/contacts/search?q=bob", nil), 42))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", svc.lastQuery)
}

func TestGetContactHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &stubService{contact: &models.Contact{ID: 7, OwnerID: 42, Name: "Bob", Phone: "555-1234"}}
		h := newTestHandler(svc)

		req := authenticated(httptest.NewRequest(http.MethodGet, "/contacts/7", nil), 42)
		req = mux.SetURLVars(req, map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		h.GetContact(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), svc.lastOwnerID)
		assert.Equal(t, int64(7), svc.lastContactID)
	})

	t.Run("foreign contact is not found", func(t *testing.T) {
		svc := &stubService{contactErr: service.ErrContactNotFound}
		h := newTestHandler(svc)

		req := authenticated(httptest.NewRequest(http.MethodGet, "/contacts/7", nil), 99)
		req = mux.SetURLVars(req, map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		h.GetContact(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateContactHandler(t *testing.T) {
	svc := &stubService{contact: &models.Contact{ID: 7, OwnerID: 42, Name: "Bob Smith", Phone: "555-1234"}}
	h := newTestHandler(svc)

	req := authenticated(jsonRequest(http.MethodPut, "/contacts/7", `{"name":"Bob Smith","phone":"555-1234"}`), 42)
	req = mux.SetURLVars(req, map[string]string{"id": "7"})
	rec := httptest.NewRecorder()
	h.UpdateContact(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob Smith", svc.lastInput.Name)
	assert.Contains(t, rec.Body.String(), `"name":"Bob Smith"`)
}

func TestDeleteContactHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &stubService{}
		h := newTestHandler(svc)

		req := authenticated(httptest.NewRequest(http.MethodDelete, "/contacts/7", nil), 42)
		req = mux.SetURLVars(req, map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		h.DeleteContact(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, int64(7), svc.lastContactID)
	})

	t.Run("missing or foreign", func(t *testing.T) {
		svc := &stubService{deleteErr: service.ErrContactNotFound}
		h := newTestHandler(svc)

		req := authenticated(httptest.NewRequest(http.MethodDelete, "/contacts/7", nil), 42)
		req = mux.SetURLVars(req, map[string]string{"id": "7"})
		rec := httptest.NewRecorder()
		h.DeleteContact(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestContactStatsHandler(t *testing.T) {
	created := time.Now()
	svc := &stubService{stats: &models.ContactStats{
		Total:      2,
		ByCategory: map[string]int{"Friend": 1, "Work": 1},
		Recent: []models.Contact{
			{ID: 2, OwnerID: 42, Name: "Bob", Phone: "555-1234", Category: "Friend", CreatedAt: created},
			{ID: 1, OwnerID: 42, Name: "Alice", Phone: "555-0001", Category: "Work", CreatedAt: created.Add(-time.Hour)},
		},
	}}
	h := newTestHandler(svc)

	rec := httptest.NewRecorder()
	h.ContactStats(rec, authenticated(httptest.NewRequest(http.MethodGet, "/contacts/stats", nil), 42))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.ContactStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByCategory["Friend"])
	assert.Equal(t, "Bob", stats.Recent[0].Name)
}
