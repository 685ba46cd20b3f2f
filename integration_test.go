//go:build integration

package letterpdf

// Notes:
// - Integration tests drive a real headless Chrome through a shared
//   RendererPool created in TestMain and closed after all tests complete.
// - Pool size is capped at 2 for CI environments.

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/alnah/go-letterpdf/internal/store"
)

const integrationTimeout = 60 * time.Second

var testPool *RendererPool

func TestMain(m *testing.M) {
	size := ResolvePoolSize(0)
	if size > 2 {
		size = 2
	}
	testPool = NewRendererPool(size, func() Renderer {
		return NewChromeRenderer(integrationTimeout, zap.NewNop())
	})

	code := m.Run()

	_ = testPool.Close()
	os.Exit(code)
}

func newIntegrationCreator(t *testing.T) (*Creator, *fakeMailer) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, err = st.Import(ctx, testFixture())
	require.NoError(t, err)

	mailer := &fakeMailer{}
	c, err := New(st,
		WithLogger(zaptest.NewLogger(t)),
		WithRenderer(testPool),
		WithMailer(mailer),
		WithTimeout(integrationTimeout),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mailer
}

func TestCreator_Create_PDF_Integration(t *testing.T) {
	c, _ := newIntegrationCreator(t)

	res, err := c.Create(context.Background(), CreateParams{ContactIDs: "1,3", TemplateID: 1, Output: OutputPDF})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF-")), "missing PDF magic bytes")
	assert.Equal(t, 2, res.PageCount, "one page per letter")
	assert.Len(t, res.Letters, 2)
}

func TestCreator_Create_Email_Integration(t *testing.T) {
	c, mailer := newIntegrationCreator(t)

	res, err := c.Create(context.Background(), CreateParams{
		ContactIDs: "1", TemplateID: 5, ToEmail: "office@example.org", Output: OutputEmail,
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	att := mailer.sent[0].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, res.FileName, att[0].FileName)
	assert.True(t, bytes.HasPrefix(att[0].Data, []byte("%PDF-")))
}

func TestChromeRenderer_Layouts_Integration(t *testing.T) {
	r := NewChromeRenderer(integrationTimeout, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = r.Close() })

	for _, layout := range []*PageLayout{nil, DefaultPageLayout()} {
		pdf, err := r.Render(context.Background(), "<!DOCTYPE html><html><body><p>Hello</p></body></html>", layout)
		require.NoError(t, err)

		pages, err := countPages(pdf)
		require.NoError(t, err)
		assert.Equal(t, 1, pages)
	}
}
