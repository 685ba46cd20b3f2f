package letterpdf

import (
	"fmt"
	"strings"

	"github.com/alnah/go-letterpdf/internal/crm"
)

// Model types shared with the store and token packages.
type (
	Domain          = crm.Domain
	Contact         = crm.Contact
	MessageTemplate = crm.MessageTemplate
	PDFFormat       = crm.PDFFormat
	Activity        = crm.Activity
)

// OutputMode selects what Create does with the merged letters.
type OutputMode string

// Output modes.
const (
	OutputEmail OutputMode = "email" // render and email the PDF (default)
	OutputPDF   OutputMode = "pdf"   // render and return the PDF
	OutputHTML  OutputMode = "html"  // return merged HTML, no rendering
)

// ParseOutputMode maps a case-insensitive name to an OutputMode.
// An empty name is OutputEmail.
func ParseOutputMode(s string) (OutputMode, error) {
	switch m := OutputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return OutputEmail, nil
	case OutputEmail, OutputPDF, OutputHTML:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (must be email, pdf, or html)", ErrInvalidOutput, s)
	}
}

// CreateParams are the Pdf.Create parameters.
type CreateParams struct {
	ContactIDs      string     // "1" or "1,2,3"
	TemplateID      int64      // required
	ToEmail         string     // required in email mode
	PDFFormatID     *int64     // overrides the template's format when set
	Output          OutputMode // empty means OutputEmail
	SourceContactID int64      // activity source; 0 uses each target contact
}

// CreateResult is returned by Create.
type CreateResult struct {
	FileName    string
	PDF         []byte // nil in html mode
	PageCount   int
	Letters     []Letter
	Skipped     []Skip
	ActivityIDs []int64
	SentTo      string // recipient in email mode
}

// Letter is one merged letter.
type Letter struct {
	ContactID   int64  `json:"contact_id"`
	DisplayName string `json:"display_name"`
	HTML        string `json:"html"`
	Text        string `json:"text"`
}

// Skip records a contact left out because of a suppression flag.
type Skip struct {
	ContactID   int64  `json:"contact_id"`
	DisplayName string `json:"display_name"`
	Reason      string `json:"reason"`
}
