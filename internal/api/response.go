package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	letterpdf "github.com/alnah/go-letterpdf"
)

// apiVersion is reported in every envelope.
const apiVersion = 3

// Envelope is the CRM API3 response shape.
type Envelope struct {
	IsError      int     `json:"is_error"`
	Version      int     `json:"version,omitempty"`
	Count        int     `json:"count"`
	Values       *Values `json:"values,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
}

// Values is the result object of Pdf.Create, shared with the MCP tool.
type Values struct {
	FileName    string             `json:"file_name" jsonschema:"name of the generated PDF file"`
	PDF         string             `json:"pdf,omitempty" jsonschema:"base64 encoded PDF, empty in html mode"`
	PageCount   int                `json:"page_count,omitempty" jsonschema:"number of pages in the PDF"`
	Letters     []letterpdf.Letter `json:"letters" jsonschema:"merged letters, one per contact"`
	Skipped     []letterpdf.Skip   `json:"skipped,omitempty" jsonschema:"contacts left out because of a suppression flag"`
	ActivityIDs []int64            `json:"activity_ids" jsonschema:"ids of the recorded Print PDF Letter activities"`
	SentTo      string             `json:"sent_to,omitempty" jsonschema:"recipient of the e-mail in email mode"`
}

// NewValues converts a CreateResult into its wire form.
func NewValues(r *letterpdf.CreateResult) Values {
	v := Values{
		FileName:    r.FileName,
		PageCount:   r.PageCount,
		Letters:     r.Letters,
		Skipped:     r.Skipped,
		ActivityIDs: r.ActivityIDs,
		SentTo:      r.SentTo,
	}
	if len(r.PDF) > 0 {
		v.PDF = base64.StdEncoding.EncodeToString(r.PDF)
	}
	return v
}

// StatusFor maps a Create error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errInvalidParam),
		errors.Is(err, letterpdf.ErrInvalidContactIDs),
		errors.Is(err, letterpdf.ErrMissingParam),
		errors.Is(err, letterpdf.ErrInvalidEmail),
		errors.Is(err, letterpdf.ErrInvalidOutput),
		errors.Is(err, letterpdf.ErrEmptyTemplate),
		errors.Is(err, letterpdf.ErrInvalidPageSize),
		errors.Is(err, letterpdf.ErrInvalidOrientation),
		errors.Is(err, letterpdf.ErrInvalidMargin),
		errors.Is(err, letterpdf.ErrInvalidMetric):
		return http.StatusBadRequest
	case errors.Is(err, letterpdf.ErrTemplateNotFound),
		errors.Is(err, letterpdf.ErrPDFFormatNotFound),
		errors.Is(err, letterpdf.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, letterpdf.ErrSuppressed),
		errors.Is(err, letterpdf.ErrNoLetters):
		return http.StatusUnprocessableEntity
	case errors.Is(err, letterpdf.ErrMailSend),
		errors.Is(err, letterpdf.ErrBrowserConnect),
		errors.Is(err, letterpdf.ErrPDFGeneration),
		errors.Is(err, letterpdf.ErrPageCreate),
		errors.Is(err, letterpdf.ErrPageLoad):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}

// respondError writes a failure envelope. Server-side failures are logged
// with the request id; client errors are not.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("pdf create failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
	}
	respondJSON(w, status, &Envelope{
		IsError:      1,
		ErrorMessage: err.Error(),
	})
}
