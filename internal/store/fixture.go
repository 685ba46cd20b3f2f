package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/crm"
	"github.com/alnah/go-letterpdf/internal/yamlutil"
)

// Fixture is a YAML snapshot of CRM records to import.
type Fixture struct {
	Domain    *crm.Domain           `yaml:"domain"`
	Formats   []crm.PDFFormat       `yaml:"formats"`
	Templates []crm.MessageTemplate `yaml:"templates"`
	Contacts  []crm.Contact         `yaml:"contacts"`
}

// MaxFixtureSize bounds fixture files.
const MaxFixtureSize = 16 << 20

// LoadFixture reads a fixture file, rejecting unknown keys.
func LoadFixture(path string) (*Fixture, error) {
	var f Fixture
	if err := yamlutil.ReadFileStrict(path, &f, MaxFixtureSize); err != nil {
		return nil, fmt.Errorf("loading fixture %s: %w", path, err)
	}
	return &f, nil
}

// ImportStats counts the records written by Import.
type ImportStats struct {
	Formats   int
	Templates int
	Contacts  int
}

// Import upserts every record of f in one transaction.
func (s *SQLite) Import(ctx context.Context, f *Fixture) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("importing: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if d := f.Domain; d != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO domain (id, name, from_name, email, phone, address) VALUES (?, ?, ?, ?, ?, ?)`,
			DefaultDomainID, d.Name, d.FromName, d.Email, d.Phone, d.Address); err != nil {
			return stats, fmt.Errorf("importing domain: %w", err)
		}
	}

	for _, pf := range f.Formats {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO pdf_format
			 (id, name, paper_size, orientation, metric, margin_top, margin_bottom, margin_left, margin_right)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pf.ID, pf.Name, pf.PaperSize, pf.Orientation, pf.Metric,
			pf.MarginTop, pf.MarginBottom, pf.MarginLeft, pf.MarginRight); err != nil {
			return stats, fmt.Errorf("importing pdf format %d: %w", pf.ID, err)
		}
		stats.Formats++
	}

	for _, t := range f.Templates {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO message_template (id, title, subject, html, text, pdf_format_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Subject, t.HTML, t.Text, t.PDFFormatID); err != nil {
			return stats, fmt.Errorf("importing template %d: %w", t.ID, err)
		}
		stats.Templates++
	}

	for i := range f.Contacts {
		if err := importContact(ctx, tx, &f.Contacts[i]); err != nil {
			return stats, err
		}
		stats.Contacts++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("importing: %w", err)
	}

	s.logger.Info("fixture imported",
		zap.Int("formats", stats.Formats),
		zap.Int("templates", stats.Templates),
		zap.Int("contacts", stats.Contacts))
	return stats, nil
}

func importContact(ctx context.Context, tx *sql.Tx, c *crm.Contact) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO contact
		 (id, display_name, sort_name, prefix, first_name, last_name, email,
		  street_address, city, postal_code, country,
		  do_not_mail, is_deceased, on_hold,
		  email_greeting, postal_greeting, addressee)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DisplayName, c.SortName, c.Prefix, c.FirstName, c.LastName, c.Email,
		c.StreetAddress, c.City, c.PostalCode, c.Country,
		c.DoNotMail, c.IsDeceased, c.OnHold,
		c.EmailGreeting, c.PostalGreeting, c.Addressee); err != nil {
		return fmt.Errorf("importing contact %d: %w", c.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contact_custom WHERE contact_id = ?`, c.ID); err != nil {
		return fmt.Errorf("importing contact %d: %w", c.ID, err)
	}
	for name, value := range c.Custom {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_custom (contact_id, name, value) VALUES (?, ?, ?)`, c.ID, name, value); err != nil {
			return fmt.Errorf("importing custom field %q of contact %d: %w", name, c.ID, err)
		}
	}
	return nil
}
