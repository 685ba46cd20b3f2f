package letterpdf

import "errors"

// Sentinel errors for Pdf.Create.
var (
	ErrInvalidContactIDs = errors.New("parameter contact_id must be a unique id or a list of ids separated by comma")
	ErrMissingParam      = errors.New("mandatory parameter missing")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidOutput     = errors.New("invalid output mode")
	ErrTemplateNotFound  = errors.New("could not find template")
	ErrPDFFormatNotFound = errors.New("could not find PDF format")
	ErrEmptyTemplate     = errors.New("template has no content")
	ErrContactNotFound   = errors.New("could not find contact")
	ErrSuppressed        = errors.New("suppressed creating pdf letter")
	ErrNoLetters         = errors.New("no letters to create: all contacts are suppressed")
	ErrMailSend          = errors.New("error sending e-mail")
	ErrNoMailer          = errors.New("no mail transport configured")

	// Rendering errors.
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrRendererClosed = errors.New("renderer pool is closed")

	// Page format validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidMetric      = errors.New("invalid margin unit")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
