package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/phonebook-dev/phonebook-service/internal/auth"
	"github.com/phonebook-dev/phonebook-service/internal/config"
	"github.com/phonebook-dev/phonebook-service/internal/models"
	"github.com/phonebook-dev/phonebook-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Business outcomes the handlers map to HTTP statuses. Anything else coming
// out of the service is an infrastructure failure.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown username and wrong password so
	// a caller cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrContactNotFound    = errors.New("contact not found")
)

// ContactInput carries the mutable contact fields submitted by the caller.
// Required-field validation happens at the transport boundary.
type ContactInput struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Category string
	Notes    string
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, log: log, config: cfg}
}

// Register creates a new user with a bcrypt-hashed password. The only
// rejection is a taken username.
func (s *Service) Register(username, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, nil
}

// Login authenticates a user and returns a signed session token
func (s *Service) Login(username, password string) (string, *models.User, error) {
	user, err := s.repo.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.config.JWTSecret, user.ID, s.config.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return token, user, nil
}

// CreateContact adds a new contact for the owner
func (s *Service) CreateContact(ownerID int64, in ContactInput) (*models.Contact, error) {
	contact := &models.Contact{
		OwnerID:  ownerID,
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		Category: in.Category,
		Notes:    in.Notes,
	}

	if err := s.repo.CreateContact(contact); err != nil {
		return nil, err
	}

	s.log.Infof("Contact %d created for user %d", contact.ID, ownerID)
	return contact, nil
}

// ListContacts returns all of the owner's contacts ordered by name
func (s *Service) ListContacts(ownerID int64) ([]models.Contact, error) {
	return s.repo.ListContactsByOwner(ownerID)
}

// GetContact fetches a single contact of the owner
func (s *Service) GetContact(ownerID, contactID int64) (*models.Contact, error) {
	contact, err := s.repo.GetContact(ownerID, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return contact, nil
}

// SearchContacts filters the owner's contacts by a case-insensitive substring
// over name, phone and email
func (s *Service) SearchContacts(ownerID int64, query string) ([]models.Contact, error) {
	return s.repo.SearchContacts(ownerID, query)
}

// UpdateContact rewrites all mutable fields of the owner's contact and
// returns the updated record
func (s *Service) UpdateContact(ownerID, contactID int64, in ContactInput) (*models.Contact, error) {
	contact := &models.Contact{
		ID:       contactID,
		OwnerID:  ownerID,
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		Category: in.Category,
		Notes:    in.Notes,
	}

	updated, err := s.repo.UpdateContact(contact)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrContactNotFound
	}

	s.log.Infof("Contact %d updated for user %d", contactID, ownerID)
	return s.repo.GetContact(ownerID, contactID)
}

// DeleteContact removes the owner's contact
func (s *Service) DeleteContact(ownerID, contactID int64) error {
	deleted, err := s.repo.DeleteContact(ownerID, contactID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrContactNotFound
	}

	s.log.Infof("Contact %d deleted for user %d", contactID, ownerID)
	return nil
}

// ContactStats derives the statistics view from the full contact list:
// total count, per-category counts and the five most recent contacts.
func (s *Service) ContactStats(ownerID int64) (*models.ContactStats, error) {
	contacts, err := s.repo.ListContactsByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	stats := &models.ContactStats{
		Total:      len(contacts),
		ByCategory: make(map[string]int),
	}
	for _, c := range contacts {
		stats.ByCategory[c.Category]++
	}

	recent := make([]models.Contact, len(contacts))
	copy(recent, contacts)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.Recent = recent

	return stats, nil
}
