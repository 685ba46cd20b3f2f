package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	letterpdf "github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/api"
)

// PdfCreateRequest mirrors the HTTP parameters.
type PdfCreateRequest struct {
	ContactID   string `json:"contact_id" jsonschema:"contact id or comma separated list of ids"`
	TemplateID  int64  `json:"template_id" jsonschema:"message template id"`
	ToEmail     string `json:"to_email,omitempty" jsonschema:"recipient address, required when output is email"`
	PDFFormatID *int64 `json:"pdf_format_id,omitempty" jsonschema:"PDF format id overriding the template's format, 0 for the default format"`
	Output      string `json:"output,omitempty" jsonschema:"email (default), pdf, or html"`
}

// PdfCreate runs Pdf.Create for MCP clients.
type PdfCreate struct {
	creator api.Creator
	logger  *zap.Logger
}

// NewPdfCreate creates a new PdfCreate tool.
func NewPdfCreate(creator api.Creator, logger *zap.Logger) *PdfCreate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PdfCreate{creator: creator, logger: logger}
}

// PdfCreate merges, renders, and delivers letters.
func (t *PdfCreate) PdfCreate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PdfCreateRequest,
) (*mcp.CallToolResult, api.Values, error) {
	params := letterpdf.CreateParams{
		ContactIDs:  input.ContactID,
		TemplateID:  input.TemplateID,
		ToEmail:     input.ToEmail,
		Output:      letterpdf.OutputMode(input.Output),
		PDFFormatID: input.PDFFormatID,
	}

	result, err := t.creator.Create(ctx, params)
	if err != nil {
		t.logger.Warn("pdf_create failed", zap.Error(err))
		return nil, api.Values{}, fmt.Errorf("pdf create failed: %w", err)
	}

	t.logger.Info("pdf_create done",
		zap.String("file_name", result.FileName),
		zap.Int("letters", len(result.Letters)))
	return nil, api.NewValues(result), nil
}
