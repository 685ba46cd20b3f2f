// Package assets provides the CSS styles and HTML document shells used to
// render letters.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the creator. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset
// is not found, so a deployment can override a single style.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # e.g. letter.css
//	└── templates/
//	    └── {name}.html          # document shell, e.g. document.html
//
// A document shell is an html/template receiving Title, CSS and Body.
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
