package pipeline

import (
	"regexp"
	"strings"
)

// Canonical separators written back after compaction.
const (
	paragraphOperator = "<p>"
	lineBreakOperator = "<br />"
)

// nbspEntity is the entity counted at the start of each line.
const nbspEntity = "&nbsp;"

// Compaction thresholds.
const (
	maxLineLength    = 100 // spaces + characters before compaction applies
	longIndentSpaces = 50  // indent run considered long
	shortIndent      = 10
	longIndent       = 20
)

var (
	paragraphPattern = regexp.MustCompile(`<\s*p\s*>`)
	lineBreakPattern = regexp.MustCompile(`<\s*br\s*/>`)
	leadingNbsp      = regexp.MustCompile(`^(&nbsp;)+`)
)

// phpTrimSet matches the characters trimmed from every letter line.
const phpTrimSet = " \t\n\r\x00\x0b"

// indentTrimSet holds the characters stripped when measuring the text after an indent.
const indentTrimSet = "&nbsp; "

// CompactLeadingSpaces shortens runs of leading &nbsp; on long letter lines
// so that indented lines still fit the page width.
//
// The message is split on <p> and then on <br />. Every line is trimmed.
// A line that starts with &nbsp; and whose indent plus text exceeds 100
// characters gets its indent replaced by 10 &nbsp; (20 when the indent is
// longer than 50, a single one when the text alone exceeds 100).
func CompactLeadingSpaces(html string) string {
	paragraphs := paragraphPattern.Split(html, -1)
	for i, paragraph := range paragraphs {
		lines := lineBreakPattern.Split(paragraph, -1)
		for j, line := range lines {
			lines[j] = compactLine(line)
		}
		paragraphs[i] = strings.Join(lines, lineBreakOperator)
	}
	return strings.Join(paragraphs, paragraphOperator)
}

func compactLine(line string) string {
	line = strings.Trim(line, phpTrimSet)

	run := leadingNbsp.FindString(line)
	if run == "" {
		return line
	}

	spaces := len(run) / len(nbspEntity)
	text := strings.TrimLeft(line, indentTrimSet)
	chars := len(text)
	if spaces+chars <= maxLineLength {
		return line
	}

	count := shortIndent
	if spaces > longIndentSpaces {
		count = longIndent
	}
	if chars > maxLineLength {
		count = 1
	}
	return strings.Repeat(nbspEntity, count) + text
}
