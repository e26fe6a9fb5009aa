// Package cms holds the lifecycle hooks run around contact-form writes.
// Before hooks validate and normalize; they abort the write by returning an
// error. After hooks only observe.
package cms

import (
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/formresume/internal/models"
	"go.uber.org/zap"
)

// DateLayout is the canonical stored date format.
const DateLayout = "2006-01-02"

var acceptedLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ValidationError rejects a write because of one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizeDate parses raw with any accepted layout and returns it as
// YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q", raw)}
}

// Hooks runs the contact lifecycle callbacks.
type Hooks struct {
	log *zap.Logger
}

// NewHooks returns Hooks logging to log.
func NewHooks(log *zap.Logger) *Hooks {
	return &Hooks{log: log}
}

// BeforeCreate validates and normalizes c in place.
func (h *Hooks) BeforeCreate(c *models.Contact) error {
	return normalizeDateField(c)
}

// BeforeUpdate validates and normalizes the fields present in c.
func (h *Hooks) BeforeUpdate(c *models.Contact) error {
	return normalizeDateField(c)
}

// AfterCreate logs the stored contact.
func (h *Hooks) AfterCreate(c *models.Contact) {
	h.log.Info("contact created", zap.String("id", c.ID), zap.String("date", c.Date))
}

// AfterUpdate logs the updated contact.
func (h *Hooks) AfterUpdate(c *models.Contact) {
	h.log.Info("contact updated", zap.String("id", c.ID), zap.String("date", c.Date))
}

func normalizeDateField(c *models.Contact) error {
	if strings.TrimSpace(c.Date) == "" {
		c.Date = ""
		return nil
	}
	d, err := NormalizeDate(c.Date)
	if err != nil {
		return err
	}
	c.Date = d
	return nil
}
