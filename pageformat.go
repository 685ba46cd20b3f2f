package letterpdf

import (
	"fmt"
	"strings"

	"github.com/alnah/go-letterpdf/internal/crm"
)

// Paper sizes in inches, portrait.
var paperSizes = map[string][2]float64{
	"letter":    {8.5, 11},
	"legal":     {8.5, 14},
	"executive": {7.25, 10.5},
	"a3":        {11.69, 16.54},
	"a4":        {8.27, 11.69},
	"a5":        {5.83, 8.27},
}

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin = 0
	MaxMargin = 3.0
)

// Units per inch for margin metrics.
var metricsPerInch = map[string]float64{
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
	"pt": 72,
}

// PageLayout is a resolved PDF format with every dimension in inches.
type PageLayout struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

// NewPageLayout validates a PDF format and converts it to inches.
// Empty fields fall back to the default format values.
func NewPageLayout(f *PDFFormat) (*PageLayout, error) {
	def := crm.DefaultPDFFormat()
	if f == nil {
		f = def
	}

	size := strings.ToLower(orDefault(f.PaperSize, def.PaperSize))
	dims, ok := paperSizes[size]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageSize, f.PaperSize)
	}

	orientation := strings.ToLower(orDefault(f.Orientation, def.Orientation))
	switch orientation {
	case OrientationPortrait:
	case OrientationLandscape:
		dims[0], dims[1] = dims[1], dims[0]
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrientation, f.Orientation)
	}

	metric := strings.ToLower(orDefault(f.Metric, def.Metric))
	perInch, ok := metricsPerInch[metric]
	if !ok {
		return nil, fmt.Errorf("%w: %q (must be in, cm, mm, or pt)", ErrInvalidMetric, f.Metric)
	}

	layout := &PageLayout{Width: dims[0], Height: dims[1]}
	margins := []struct {
		name  string
		value float64
		dst   *float64
	}{
		{"top", f.MarginTop, &layout.MarginTop},
		{"bottom", f.MarginBottom, &layout.MarginBottom},
		{"left", f.MarginLeft, &layout.MarginLeft},
		{"right", f.MarginRight, &layout.MarginRight},
	}
	for _, m := range margins {
		inches := m.value / perInch
		if inches < MinMargin || inches > MaxMargin {
			return nil, fmt.Errorf("%w: %s %.2f%s (must be between %.2f and %.2f in)",
				ErrInvalidMargin, m.name, m.value, metric, float64(MinMargin), MaxMargin)
		}
		*m.dst = inches
	}

	if layout.MarginLeft+layout.MarginRight >= layout.Width || layout.MarginTop+layout.MarginBottom >= layout.Height {
		return nil, fmt.Errorf("%w: margins leave no printable area on %s", ErrInvalidMargin, size)
	}

	return layout, nil
}

// DefaultPageLayout is the layout of the default PDF format.
func DefaultPageLayout() *PageLayout {
	l, _ := NewPageLayout(crm.DefaultPDFFormat())
	return l
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
