package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	letterpdf "github.com/alnah/go-letterpdf"
)

// maxBodySize caps request bodies.
const maxBodySize = 1 << 20

var errInvalidParam = errors.New("invalid parameter")

// scalar accepts a JSON string or number and keeps its text.
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = scalar(n.String())
	return nil
}

// rawParams are the Pdf.Create parameters as received.
type rawParams struct {
	ContactID   scalar `json:"contact_id"`
	TemplateID  scalar `json:"template_id"`
	ToEmail     scalar `json:"to_email"`
	PDFFormatID scalar `json:"pdf_format_id"`
	Output      scalar `json:"output"`
}

// decodeParams reads parameters from a JSON body, or from the query string
// and form body otherwise.
func decodeParams(w http.ResponseWriter, r *http.Request) (*rawParams, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var p rawParams
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: malformed JSON body: %v", errInvalidParam, err)
		}
		return &p, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParam, err)
	}
	return &rawParams{
		ContactID:   scalar(r.Form.Get("contact_id")),
		TemplateID:  scalar(r.Form.Get("template_id")),
		ToEmail:     scalar(r.Form.Get("to_email")),
		PDFFormatID: scalar(r.Form.Get("pdf_format_id")),
		Output:      scalar(r.Form.Get("output")),
	}, nil
}

// CreateParams converts raw values into letterpdf.CreateParams. Semantic
// validation is left to the Creator. A pdf_format_id of 0 selects the
// default format over the template's own.
func (p *rawParams) CreateParams() (letterpdf.CreateParams, error) {
	out := letterpdf.CreateParams{
		ContactIDs: string(p.ContactID),
		ToEmail:    strings.TrimSpace(string(p.ToEmail)),
		Output:     letterpdf.OutputMode(p.Output),
	}

	if s := strings.TrimSpace(string(p.TemplateID)); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: template_id must be an integer, got %q", errInvalidParam, s)
		}
		out.TemplateID = id
	}

	if s := strings.TrimSpace(string(p.PDFFormatID)); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 0 {
			return out, fmt.Errorf("%w: pdf_format_id must be a non-negative integer, got %q", errInvalidParam, s)
		}
		out.PDFFormatID = &id
	}

	return out, nil
}
