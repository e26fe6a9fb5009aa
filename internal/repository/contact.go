// Package repository provides PostgreSQL persistence for contact-form
// submissions.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/formresume/internal/models"
)

// PostgresContactRepository stores contacts in PostgreSQL.
type PostgresContactRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresContactRepository creates a repository on db.
func NewPostgresContactRepository(db *sql.DB) *PostgresContactRepository {
	return &PostgresContactRepository{DB: db}
}

// CreateContact inserts c.
func (r *PostgresContactRepository) CreateContact(ctx context.Context, c *models.Contact) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO contacts (id, name, email, phone, message, preferred_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, $7)
	`, c.ID, c.Name, c.Email, c.Phone, c.Message, c.Date, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// UpdateContact replaces the editable fields of the contact with c.ID and
// reports whether a row matched.
func (r *PostgresContactRepository) UpdateContact(ctx context.Context, c *models.Contact) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE contacts
		   SET name = $2, email = $3, phone = $4, message = $5,
		       preferred_date = NULLIF($6, '')::date
		 WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Phone, c.Message, c.Date)
	if err != nil {
		return false, fmt.Errorf("update contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update contact: %w", err)
	}
	return n > 0, nil
}
