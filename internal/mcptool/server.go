// Package mcptool exposes Pdf.Create as a Model Context Protocol tool.
package mcptool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/alnah/go-letterpdf/internal/api"
)

// NewServer creates an MCP server with the pdf_create tool.
func NewServer(creator api.Creator, version string, logger *zap.Logger) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "letterpdf", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pdf_create",
		Description: "Merge a message template for one or more CRM contacts into a PDF letter, record a Print PDF Letter activity per contact, and e-mail, return, or preview the result",
	}, NewPdfCreate(creator, logger).PdfCreate)

	return server
}
