package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-letterpdf/internal/crm"
)

// fetchLimit bounds concurrent contact lookups.
const fetchLimit = 8

// Domain returns the default domain.
func (s *SQLite) Domain(ctx context.Context) (*crm.Domain, error) {
	var d crm.Domain
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, from_name, email, phone, address FROM domain WHERE id = ?`, DefaultDomainID,
	).Scan(&d.ID, &d.Name, &d.FromName, &d.Email, &d.Phone, &d.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("domain %d: %w", DefaultDomainID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading domain: %w", err)
	}
	return &d, nil
}

// Template returns the message template with the given id.
func (s *SQLite) Template(ctx context.Context, id int64) (*crm.MessageTemplate, error) {
	var t crm.MessageTemplate
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, subject, html, text, pdf_format_id FROM message_template WHERE id = ?`, id,
	).Scan(&t.ID, &t.Title, &t.Subject, &t.HTML, &t.Text, &t.PDFFormatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading template %d: %w", id, err)
	}
	return &t, nil
}

// PDFFormat returns the page format with the given id.
func (s *SQLite) PDFFormat(ctx context.Context, id int64) (*crm.PDFFormat, error) {
	var f crm.PDFFormat
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, paper_size, orientation, metric, margin_top, margin_bottom, margin_left, margin_right
		 FROM pdf_format WHERE id = ?`, id,
	).Scan(&f.ID, &f.Name, &f.PaperSize, &f.Orientation, &f.Metric,
		&f.MarginTop, &f.MarginBottom, &f.MarginLeft, &f.MarginRight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pdf format %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading pdf format %d: %w", id, err)
	}
	return &f, nil
}

// Contacts loads the contacts with the given ids, in the same order.
// Core fields are always loaded; custom fields only when named in fields.
func (s *SQLite) Contacts(ctx context.Context, ids []int64, fields []string) ([]*crm.Contact, error) {
	var custom []string
	for _, f := range fields {
		if !crm.IsCoreField(f) {
			custom = append(custom, f)
		}
	}

	out := make([]*crm.Contact, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.contact(gctx, id, custom)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("contacts loaded", zap.Int("count", len(out)), zap.Strings("custom_fields", custom))
	return out, nil
}

func (s *SQLite) contact(ctx context.Context, id int64, custom []string) (*crm.Contact, error) {
	var c crm.Contact
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, sort_name, prefix, first_name, last_name, email,
		        street_address, city, postal_code, country,
		        do_not_mail, is_deceased, on_hold,
		        email_greeting, postal_greeting, addressee
		 FROM contact WHERE id = ?`, id,
	).Scan(&c.ID, &c.DisplayName, &c.SortName, &c.Prefix, &c.FirstName, &c.LastName, &c.Email,
		&c.StreetAddress, &c.City, &c.PostalCode, &c.Country,
		&c.DoNotMail, &c.IsDeceased, &c.OnHold,
		&c.EmailGreeting, &c.PostalGreeting, &c.Addressee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading contact %d: %w", id, err)
	}

	if len(custom) == 0 {
		return &c, nil
	}

	args := make([]any, 0, len(custom)+1)
	args = append(args, id)
	for _, name := range custom {
		args = append(args, name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(custom)), ",")
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM contact_custom WHERE contact_id = ? AND name IN (`+placeholders+`)`, args...) // #nosec G202 -- placeholders only
	if err != nil {
		return nil, fmt.Errorf("loading custom fields of contact %d: %w", id, err)
	}
	defer rows.Close()

	c.Custom = make(map[string]string, len(custom))
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("reading custom field of contact %d: %w", id, err)
		}
		c.Custom[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading custom fields of contact %d: %w", id, err)
	}
	return &c, nil
}
