package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-letterpdf/internal/crm"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testFixture() *Fixture {
	return &Fixture{
		Domain: &crm.Domain{Name: "Friends of the Park", Email: "info@example.org"},
		Formats: []crm.PDFFormat{
			{ID: 2, Name: "A4 narrow", PaperSize: "a4", Orientation: "portrait", Metric: "mm",
				MarginTop: 10, MarginBottom: 10, MarginLeft: 15, MarginRight: 15},
		},
		Templates: []crm.MessageTemplate{
			{ID: 5, Title: "Thank you", HTML: "<p>Dear {contact.first_name}</p>", PDFFormatID: 2},
		},
		Contacts: []crm.Contact{
			{ID: 1, DisplayName: "Ann Smith", FirstName: "Ann", Custom: map[string]string{"team": "blue", "tier": "gold"}},
			{ID: 2, DisplayName: "Bob Jones", FirstName: "Bob", IsDeceased: true},
		},
	}
}

func TestOpen_SeedsDefaultDomain(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	d, err := s.Domain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultDomainID), d.ID)
	assert.Equal(t, "Default Domain", d.Name)
}

func TestOpen_Memory(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Domain(context.Background())
	assert.NoError(t, err)
}

func TestImportAndRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	stats, err := s.Import(ctx, testFixture())
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Formats: 1, Templates: 1, Contacts: 2}, stats)

	d, err := s.Domain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Friends of the Park", d.Name)

	tmpl, err := s.Template(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Thank you", tmpl.Title)
	assert.Equal(t, int64(2), tmpl.PDFFormatID)

	f, err := s.PDFFormat(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "mm", f.Metric)
	assert.InDelta(t, 15.0, f.MarginLeft, 0.001)

	contacts, err := s.Contacts(ctx, []int64{2, 1}, []string{"first_name", "team"})
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Bob Jones", contacts[0].DisplayName, "request order is kept")
	assert.True(t, contacts[0].IsDeceased)
	assert.Equal(t, map[string]string{"team": "blue"}, contacts[1].Custom, "only named custom fields load")
}

func TestImport_ReplacesCustomFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	fx := testFixture()
	_, err := s.Import(ctx, fx)
	require.NoError(t, err)

	fx.Contacts[0].Custom = map[string]string{"team": "red"}
	_, err = s.Import(ctx, fx)
	require.NoError(t, err)

	contacts, err := s.Contacts(ctx, []int64{1}, []string{"team", "tier"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"team": "red"}, contacts[0].Custom)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Template(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.PDFFormat(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Contacts(ctx, []int64{99}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateActivity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.Import(ctx, testFixture())
	require.NoError(t, err)

	when := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	id, err := s.CreateActivity(ctx, &crm.Activity{
		TypeName:         crm.ActivityPrintPDFLetter,
		SourceContactID:  1,
		TargetContactIDs: []int64{1},
		Subject:          "Thank you",
		Details:          "<p>Dear Ann</p>",
		DateTime:         when,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	acts, err := s.Activities(ctx, 1)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, id, acts[0].ID)
	assert.Equal(t, crm.ActivityPrintPDFLetter, acts[0].TypeName)
	assert.Equal(t, "<p>Dear Ann</p>", acts[0].Details)
	assert.True(t, when.Equal(acts[0].DateTime))

	none, err := s.Activities(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	content := `domain:
  name: Friends of the Park
  email: info@example.org
templates:
  - id: 1
    title: Welcome
    text: "Hello **{contact.first_name}**"
contacts:
  - id: 10
    displayName: Ann Smith
    firstName: Ann
    doNotMail: true
    custom:
      team: blue
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, "Friends of the Park", f.Domain.Name)
	require.Len(t, f.Templates, 1)
	assert.Equal(t, "Welcome", f.Templates[0].Title)
	require.Len(t, f.Contacts, 1)
	assert.True(t, f.Contacts[0].DoNotMail)
	assert.Equal(t, "blue", f.Contacts[0].Custom["team"])
}

func TestLoadFixture_UnknownKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts:\n  - id: 1\n    shoeSize: 42\n"), 0o600))

	_, err := LoadFixture(path)
	assert.Error(t, err)
}
