package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/phonebook-dev/phonebook-service/internal/middleware"
	"github.com/phonebook-dev/phonebook-service/internal/service"
)

type contactRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

func (req contactRequest) input() service.ContactInput {
	return service.ContactInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Category: req.Category,
		Notes:    req.Notes,
	}
}

func ownerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "User not authenticated")
	}
	return id, ok
}

func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contact id")
		return 0, false
	}
	return id, true
}

// CreateContact handles contact creation
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.svc.CreateContact(owner, req.input())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"contact": contact})
}

// ListContacts returns all contacts of the authenticated user
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	contacts, err := h.svc.ListContacts(owner)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// SearchContacts filters contacts by the q query parameter. An empty query
// returns everything.
func (h *Handler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	contacts, err := h.svc.SearchContacts(owner, r.URL.Query().Get("q"))
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// ContactStats returns the derived statistics view
func (h *Handler) ContactStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.ContactStats(owner)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// GetContact returns a single contact of the authenticated user
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.svc.GetContact(owner, id)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(w, http.StatusNotFound, "Contact not found")
			return
		}
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"contact": contact})
}

// UpdateContact rewrites all mutable fields of a contact
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.svc.UpdateContact(owner, id, req.input())
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(w, http.StatusNotFound, "Contact not found")
			return
		}
		h.serviceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"contact": contact})
}

// DeleteContact removes a contact
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteContact(owner, id); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			respondError(w, http.StatusNotFound, "Contact not found")
			return
		}
		h.serviceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
