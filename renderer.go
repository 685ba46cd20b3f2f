package letterpdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/fileutil"
	"github.com/alnah/go-letterpdf/internal/process"
)

// Renderer turns an assembled HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, htmlContent string, layout *PageLayout) ([]byte, error)
	Close() error
}

// pageRenderer renders a local HTML file, so ChromeRenderer can be tested
// without a browser.
type pageRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, layout *PageLayout) ([]byte, error)
	Close() error
}

var (
	_ Renderer     = (*ChromeRenderer)(nil)
	_ pageRenderer = (*rodRenderer)(nil)
)

const defaultTimeout = 30 * time.Second

// rodRenderer drives headless Chrome through go-rod.
// Rod downloads Chromium on first run when no browser is found.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	logger   *zap.Logger
}

func newRodRenderer(timeout time.Duration, logger *zap.Logger) *rodRenderer {
	return &rodRenderer{timeout: timeout, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}

	// Containers and CI runners cannot use the Chrome sandbox.
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.kill(l)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	r.logger.Debug("browser launched", zap.Int("pid", l.PID()))
	return nil
}

// Close releases the browser and kills its process group.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.kill(r.launcher)
		r.launcher = nil
	}
	return err
}

// kill stops Chrome and its helper processes.
func (r *rodRenderer) kill(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	l.Kill()
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, layout *PageLayout) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(layout))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions maps a page layout onto Chrome's print parameters.
func buildPDFOptions(layout *PageLayout) *proto.PagePrintToPDF {
	if layout == nil {
		layout = DefaultPageLayout()
	}
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(layout.Width),
		PaperHeight:     floatPtr(layout.Height),
		MarginTop:       floatPtr(layout.MarginTop),
		MarginBottom:    floatPtr(layout.MarginBottom),
		MarginLeft:      floatPtr(layout.MarginLeft),
		MarginRight:     floatPtr(layout.MarginRight),
		PrintBackground: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// ChromeRenderer renders HTML documents to PDF with headless Chrome.
// The browser starts on the first Render call.
type ChromeRenderer struct {
	pages pageRenderer
}

// NewChromeRenderer creates a ChromeRenderer. A zero timeout uses 30s.
func NewChromeRenderer(timeout time.Duration, logger *zap.Logger) *ChromeRenderer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{pages: newRodRenderer(timeout, logger)}
}

// Render writes the document to a temporary file and prints it to PDF.
func (c *ChromeRenderer) Render(ctx context.Context, htmlContent string, layout *PageLayout) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.pages.RenderFromFile(ctx, tmpPath, layout)
}

// Close releases browser resources.
func (c *ChromeRenderer) Close() error {
	if c.pages != nil {
		return c.pages.Close()
	}
	return nil
}

// countPages reads the page count back from rendered PDF bytes.
func countPages(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("counting PDF pages: %w", err)
	}
	return n, nil
}
