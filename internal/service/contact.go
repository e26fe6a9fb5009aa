// Package service provides the contact-form business logic, running the
// CMS lifecycle hooks around persistence delegated to a repository.
package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/atinyakov/formresume/internal/cms"
	"github.com/atinyakov/formresume/internal/metrics"
	"github.com/atinyakov/formresume/internal/models"
	"github.com/google/uuid"
)

// ErrContactNotFound is returned by Update for an unknown contact id.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository defines the persistence operations needed by the
// ContactService.
type ContactRepository interface {
	// CreateContact inserts a new contact row.
	CreateContact(ctx context.Context, c *models.Contact) error
	// UpdateContact replaces the editable fields of the row with c.ID.
	// It reports false when no such row exists.
	UpdateContact(ctx context.Context, c *models.Contact) (bool, error)
}

// LifecycleHooks are run around every write. Before hooks abort the write
// by returning an error.
type LifecycleHooks interface {
	BeforeCreate(c *models.Contact) error
	BeforeUpdate(c *models.Contact) error
	AfterCreate(c *models.Contact)
	AfterUpdate(c *models.Contact)
}

// ContactService implements contact-form storage.
type ContactService struct {
	repo  ContactRepository
	hooks LifecycleHooks
	now   func() time.Time
}

// NewContactService constructs a ContactService.
func NewContactService(repo ContactRepository, hooks LifecycleHooks) *ContactService {
	return &ContactService{repo: repo, hooks: hooks, now: time.Now}
}

// Create validates c, runs BeforeCreate, assigns an ID and creation time,
// stores it and runs AfterCreate.
func (s *ContactService) Create(ctx context.Context, c *models.Contact) error {
	if err := validateContact(c); err != nil {
		return err
	}
	if err := s.hooks.BeforeCreate(c); err != nil {
		return err
	}

	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()
	if err := s.repo.CreateContact(ctx, c); err != nil {
		return err
	}

	metrics.ContactsStoredTotal.WithLabelValues("create").Inc()
	s.hooks.AfterCreate(c)
	return nil
}

// Update validates c, runs BeforeUpdate, replaces the stored row and runs
// AfterUpdate.
func (s *ContactService) Update(ctx context.Context, c *models.Contact) error {
	if c.ID == "" {
		return &cms.ValidationError{Field: "id", Message: "id is required"}
	}
	if err := validateContact(c); err != nil {
		return err
	}
	if err := s.hooks.BeforeUpdate(c); err != nil {
		return err
	}

	found, err := s.repo.UpdateContact(ctx, c)
	if err != nil {
		return err
	}
	if !found {
		return ErrContactNotFound
	}

	metrics.ContactsStoredTotal.WithLabelValues("update").Inc()
	s.hooks.AfterUpdate(c)
	return nil
}

func validateContact(c *models.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return &cms.ValidationError{Field: "name", Message: "name is required"}
	}
	if c.Email == "" {
		return &cms.ValidationError{Field: "email", Message: "email is required"}
	}
	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return &cms.ValidationError{Field: "email", Message: "email is invalid"}
	}
	return nil
}
