package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/phonebook-dev/phonebook-service/internal/models"
)

// Storage-level outcomes the service layer maps to business errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema if it does not exist yet
func (r *Repository) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users (id),
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT,
			address TEXT,
			category TEXT,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by exact username match
func (r *Repository) FindUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1`
	err := r.db.QueryRow(query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateContact creates a new contact owned by contact.OwnerID.
// Optional fields are stored as NULL when empty.
func (r *Repository) CreateContact(contact *models.Contact) error {
	query := `
		INSERT INTO contacts (owner_id, name, phone, email, address, category, notes, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query,
		contact.OwnerID, contact.Name, contact.Phone,
		contact.Email, contact.Address, contact.Category, contact.Notes).
		Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// ListContactsByOwner returns every contact of the owner ordered by name
func (r *Repository) ListContactsByOwner(ownerID int64) ([]models.Contact, error) {
	query := selectContacts + `
		WHERE owner_id = $1
		ORDER BY name`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// GetContact returns the contact only if both id and owner match; a contact
// belonging to another user is indistinguishable from a missing one.
func (r *Repository) GetContact(ownerID, contactID int64) (*models.Contact, error) {
	contact := &models.Contact{}
	query := selectContacts + `
		WHERE id = $1 AND owner_id = $2`
	err := r.db.QueryRow(query, contactID, ownerID).Scan(
		&contact.ID, &contact.OwnerID, &contact.Name, &contact.Phone,
		&contact.Email, &contact.Address, &contact.Category, &contact.Notes,
		&contact.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contact %d: %w", contactID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// SearchContacts returns the owner's contacts whose name, phone or email
// contains the query as a case-insensitive substring. An empty query matches
// every contact.
func (r *Repository) SearchContacts(ownerID int64, query string) ([]models.Contact, error) {
	pattern := "%" + query + "%"
	stmt := selectContacts + `
		WHERE owner_id = $1 AND (name ILIKE $2 OR phone ILIKE $2 OR email ILIKE $2)`
	rows, err := r.db.Query(stmt, ownerID, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// UpdateContact rewrites all mutable fields of the row matching both id and
// owner. Returns false when no row matched. created_at is never modified.
func (r *Repository) UpdateContact(contact *models.Contact) (bool, error) {
	query := `
		UPDATE contacts
		SET name = $1, phone = $2, email = NULLIF($3, ''), address = NULLIF($4, ''),
			category = NULLIF($5, ''), notes = NULLIF($6, '')
		WHERE id = $7 AND owner_id = $8`
	result, err := r.db.Exec(query,
		contact.Name, contact.Phone, contact.Email, contact.Address,
		contact.Category, contact.Notes, contact.ID, contact.OwnerID)
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}
	return affected > 0, nil
}

// DeleteContact removes the row matching both id and owner. Returns false
// when no such row existed.
func (r *Repository) DeleteContact(ownerID, contactID int64) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM contacts WHERE id = $1 AND owner_id = $2`,
		contactID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return affected > 0, nil
}

const selectContacts = `
		SELECT id, owner_id, name, phone,
			COALESCE(email, ''), COALESCE(address, ''), COALESCE(category, ''), COALESCE(notes, ''),
			created_at
		FROM contacts`

func scanContacts(rows *sql.Rows) ([]models.Contact, error) {
	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.Phone,
			&c.Email, &c.Address, &c.Category, &c.Notes,
			&c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contacts: %w", err)
	}
	return contacts, nil
}

// isUniqueViolation reports whether err is a postgres unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
