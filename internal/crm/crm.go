// Package crm defines the CRM records a letter is merged from.
package crm

import (
	"strconv"
	"strings"
	"time"
)

// ActivityPrintPDFLetter is the activity type recorded for every generated letter.
const ActivityPrintPDFLetter = "Print PDF Letter"

// Suppression reasons.
const (
	ReasonDoNotMail = "do_not_mail"
	ReasonDeceased  = "is_deceased"
	ReasonOnHold    = "on_hold"
)

// Domain is the organization sending letters.
type Domain struct {
	ID       int64  `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	FromName string `yaml:"fromName" json:"from_name"`
	Email    string `yaml:"email" json:"email"`
	Phone    string `yaml:"phone" json:"phone"`
	Address  string `yaml:"address" json:"address"`
}

// NameAndEmail returns the sender display name and address.
// FromName wins over Name when set.
func (d *Domain) NameAndEmail() (string, string) {
	name := d.FromName
	if name == "" {
		name = d.Name
	}
	return name, d.Email
}

// Field returns a domain token value.
func (d *Domain) Field(name string) (string, bool) {
	switch name {
	case "id":
		return strconv.FormatInt(d.ID, 10), true
	case "name":
		return d.Name, true
	case "email":
		return d.Email, true
	case "phone":
		return d.Phone, true
	case "address":
		return d.Address, true
	}
	return "", false
}

// Contact holds the fields a letter can reference.
type Contact struct {
	ID             int64             `yaml:"id" json:"id"`
	DisplayName    string            `yaml:"displayName" json:"display_name"`
	SortName       string            `yaml:"sortName" json:"sort_name"`
	Prefix         string            `yaml:"prefix" json:"prefix"`
	FirstName      string            `yaml:"firstName" json:"first_name"`
	LastName       string            `yaml:"lastName" json:"last_name"`
	Email          string            `yaml:"email" json:"email"`
	StreetAddress  string            `yaml:"streetAddress" json:"street_address"`
	City           string            `yaml:"city" json:"city"`
	PostalCode     string            `yaml:"postalCode" json:"postal_code"`
	Country        string            `yaml:"country" json:"country"`
	DoNotMail      bool              `yaml:"doNotMail" json:"do_not_mail"`
	IsDeceased     bool              `yaml:"isDeceased" json:"is_deceased"`
	OnHold         bool              `yaml:"onHold" json:"on_hold"`
	EmailGreeting  string            `yaml:"emailGreeting" json:"email_greeting"`
	PostalGreeting string            `yaml:"postalGreeting" json:"postal_greeting"`
	Addressee      string            `yaml:"addressee" json:"addressee"`
	Custom         map[string]string `yaml:"custom" json:"custom,omitempty"`
}

// Suppressed reports whether no letter may be produced for the contact,
// and the first matching reason.
func (c *Contact) Suppressed() (bool, string) {
	switch {
	case c.DoNotMail:
		return true, ReasonDoNotMail
	case c.IsDeceased:
		return true, ReasonDeceased
	case c.OnHold:
		return true, ReasonOnHold
	}
	return false, ""
}

// Address joins the postal address lines that are set.
func (c *Contact) Address() string {
	var parts []string
	for _, p := range []string{c.StreetAddress, strings.TrimSpace(c.PostalCode + " " + c.City), c.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Field returns the value of a contact token name.
// The second result is false for names the contact does not know.
func (c *Contact) Field(name string) (string, bool) {
	switch name {
	case "id", "contact_id":
		return strconv.FormatInt(c.ID, 10), true
	case "display_name":
		return c.DisplayName, true
	case "sort_name":
		return c.SortName, true
	case "prefix", "individual_prefix":
		return c.Prefix, true
	case "first_name":
		return c.FirstName, true
	case "last_name":
		return c.LastName, true
	case "email":
		return c.Email, true
	case "address":
		return c.Address(), true
	case "street_address":
		return c.StreetAddress, true
	case "city":
		return c.City, true
	case "postal_code":
		return c.PostalCode, true
	case "country":
		return c.Country, true
	case "email_greeting":
		return c.EmailGreeting, true
	case "postal_greeting":
		return c.PostalGreeting, true
	case "addressee":
		return c.Addressee, true
	case "do_not_mail":
		return boolString(c.DoNotMail), true
	case "is_deceased":
		return boolString(c.IsDeceased), true
	case "on_hold":
		return boolString(c.OnHold), true
	}
	v, ok := c.Custom[name]
	return v, ok
}

// IsCoreField reports whether name is stored on the contact row itself.
func IsCoreField(name string) bool {
	var c Contact
	_, ok := c.Field(name)
	return ok
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// MessageTemplate is a stored letter template.
type MessageTemplate struct {
	ID          int64  `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"msg_title"`
	Subject     string `yaml:"subject" json:"msg_subject"`
	HTML        string `yaml:"html" json:"msg_html"`
	Text        string `yaml:"text" json:"msg_text"`
	PDFFormatID int64  `yaml:"pdfFormatId" json:"pdf_format_id"`
}

// PDFFormat describes page layout for generated letters.
// Margins are expressed in Metric units.
type PDFFormat struct {
	ID           int64   `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	PaperSize    string  `yaml:"paperSize" json:"paper_size"`
	Orientation  string  `yaml:"orientation" json:"orientation"`
	Metric       string  `yaml:"metric" json:"metric"`
	MarginTop    float64 `yaml:"marginTop" json:"margin_top"`
	MarginBottom float64 `yaml:"marginBottom" json:"margin_bottom"`
	MarginLeft   float64 `yaml:"marginLeft" json:"margin_left"`
	MarginRight  float64 `yaml:"marginRight" json:"margin_right"`
}

// DefaultPDFFormat is used when a template has no format (id 0).
func DefaultPDFFormat() *PDFFormat {
	return &PDFFormat{
		Name:         "default",
		PaperSize:    "letter",
		Orientation:  "portrait",
		Metric:       "in",
		MarginTop:    0.75,
		MarginBottom: 0.75,
		MarginLeft:   0.75,
		MarginRight:  0.75,
	}
}

// Activity records that a letter was produced for one or more contacts.
type Activity struct {
	ID               int64     `json:"id"`
	TypeName         string    `json:"activity_type"`
	SourceContactID  int64     `json:"source_contact_id"`
	TargetContactIDs []int64   `json:"target_contact_id"`
	Subject          string    `json:"subject"`
	Details          string    `json:"details"`
	DateTime         time.Time `json:"activity_date_time"`
}
