package main

import (
	"context"
	"errors"
	"os"

	letterpdf "github.com/alnah/go-letterpdf"
	"github.com/alnah/go-letterpdf/internal/auth"
	"github.com/alnah/go-letterpdf/internal/config"
)

// Exit codes for the letterpdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Letters created
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or parameters
	ExitIO      = 3 // Store, file not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitMail    = 5 // Mail transport errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Mail errors (exit 5)
	if errors.Is(err, letterpdf.ErrMailSend) ||
		errors.Is(err, letterpdf.ErrNoMailer) ||
		errors.Is(err, auth.ErrTokenNotSet) ||
		errors.Is(err, auth.ErrMissingCredentials) {
		return ExitMail
	}

	// Browser errors (exit 4)
	if errors.Is(err, letterpdf.ErrBrowserConnect) ||
		errors.Is(err, letterpdf.ErrPageCreate) ||
		errors.Is(err, letterpdf.ErrPageLoad) ||
		errors.Is(err, letterpdf.ErrPDFGeneration) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrOpenStore) ||
		errors.Is(err, letterpdf.ErrTemplateNotFound) ||
		errors.Is(err, letterpdf.ErrPDFFormatNotFound) ||
		errors.Is(err, letterpdf.ErrContactNotFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, letterpdf.ErrInvalidContactIDs) ||
		errors.Is(err, letterpdf.ErrMissingParam) ||
		errors.Is(err, letterpdf.ErrInvalidEmail) ||
		errors.Is(err, letterpdf.ErrInvalidOutput) ||
		errors.Is(err, letterpdf.ErrEmptyTemplate) ||
		errors.Is(err, letterpdf.ErrSuppressed) ||
		errors.Is(err, letterpdf.ErrNoLetters) ||
		errors.Is(err, letterpdf.ErrInvalidPageSize) ||
		errors.Is(err, letterpdf.ErrInvalidOrientation) ||
		errors.Is(err, letterpdf.ErrInvalidMargin) ||
		errors.Is(err, letterpdf.ErrInvalidMetric) ||
		errors.Is(err, letterpdf.ErrStyleNotFound) ||
		errors.Is(err, letterpdf.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
