package handler

import (
	"encoding/json"
	"net/http"

	"github.com/phonebook-dev/phonebook-service/internal/models"
	"github.com/phonebook-dev/phonebook-service/internal/service"
	"github.com/sirupsen/logrus"
)

// ContactService is the business surface the handlers depend on
type ContactService interface {
	Register(username, password string) (*models.User, error)
	Login(username, password string) (string, *models.User, error)
	CreateContact(ownerID int64, in service.ContactInput) (*models.Contact, error)
	ListContacts(ownerID int64) ([]models.Contact, error)
	GetContact(ownerID, contactID int64) (*models.Contact, error)
	SearchContacts(ownerID int64, query string) ([]models.Contact, error)
	UpdateContact(ownerID, contactID int64, in service.ContactInput) (*models.Contact, error)
	DeleteContact(ownerID, contactID int64) error
	ContactStats(ownerID int64) (*models.ContactStats, error)
}

type Handler struct {
	svc ContactService
	log *logrus.Logger
}

func NewHandler(svc ContactService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// serviceError maps unexpected failures to a 500; expected business outcomes
// are handled at the call sites.
func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	h.log.Errorf("Service error: %v", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}
