package assets

// DefaultStyleName is the name of the built-in letter style.
const DefaultStyleName = "letter"

// DefaultTemplateName is the name of the built-in document shell.
const DefaultTemplateName = "document"

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a built-in document shell by name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// ListStyles returns the names of the built-in styles, sorted.
func ListStyles() []string {
	return defaultLoader.Styles()
}
