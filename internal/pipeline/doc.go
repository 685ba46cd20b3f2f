// Package pipeline implements the letter formatting stages that run around
// token replacement:
//   - leading &nbsp; compaction of long letter lines
//   - <img> tag protection while tokens are replaced
//   - Markdown to HTML conversion for text-only templates
//   - relative image URL resolution before rendering
//   - CSS injection into the assembled document
//   - plain text rendition of merged letters
//
// Token replacement itself lives in internal/token, PDF rendering in the
// root letterpdf package.
package pipeline
