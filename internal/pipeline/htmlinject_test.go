package pipeline

import (
	"context"
	"strings"
	"testing"
)

// letterDocument is the shape of an assembled letters document.
const letterDocument = "<!DOCTYPE html>\n<html>\n<head>\n<title>Thank you</title>\n<style>.letter{}</style>\n</head>\n" +
	"<body>\n<div class=\"letter\"><p>Dear Ada</p></div>\n</body>\n</html>"

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	injector := &CSSInjection{}

	tests := []struct {
		name string
		html string
		css  string
		want string
	}{
		{
			name: "extra css follows the letter style",
			html: letterDocument,
			css:  ".letter p { font-size: 12pt; }",
			want: strings.Replace(letterDocument, "</style>\n</head>",
				"</style>\n<style>.letter p { font-size: 12pt; }</style></head>", 1),
		},
		{
			name: "no extra css",
			html: letterDocument,
			css:  "",
			want: letterDocument,
		},
		{
			name: "uppercase head from a custom shell",
			html: "<HTML><HEAD></HEAD><BODY>x</BODY></HTML>",
			css:  "p{}",
			want: "<HTML><HEAD><style>p{}</style></HEAD><BODY>x</BODY></HTML>",
		},
		{
			name: "custom shell without head",
			html: `<body class="print"><div class="letter">x</div></body>`,
			css:  "p{}",
			want: `<body class="print"><style>p{}</style><div class="letter">x</div></body>`,
		},
		{
			name: "bare letters fragment",
			html: `<div class="letter">x</div>`,
			css:  "p{}",
			want: `<style>p{}</style><div class="letter">x</div>`,
		},
		{
			name: "css cannot close its style block",
			html: "<head></head>",
			css:  `p{}</style><script>alert(1)</script>`,
			want: `<head><style>p{}<\/style><script>alert(1)<\/script></style></head>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := injector.InjectCSS(context.Background(), tt.html, tt.css); got != tt.want {
				t.Errorf("InjectCSS() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestInjectCSS_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := (&CSSInjection{}).InjectCSS(ctx, letterDocument, "p{}"); got != letterDocument {
		t.Errorf("InjectCSS() changed the document after cancellation: %q", got)
	}
}

func TestJoinLetters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		letters []string
		want    string
	}{
		{
			name:    "no letters",
			letters: nil,
			want:    "",
		},
		{
			name:    "single letter",
			letters: []string{"<p>Dear Ann</p>"},
			want:    `<div class="letter"><p>Dear Ann</p></div>` + "\n",
		},
		{
			name:    "keeps order",
			letters: []string{"A", "B"},
			want:    `<div class="letter">A</div>` + "\n" + `<div class="letter">B</div>` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := JoinLetters(tt.letters)
			if got != tt.want {
				t.Errorf("JoinLetters() = %q, want %q", got, tt.want)
			}
			if n := strings.Count(got, `class="`+LetterClass+`"`); n != len(tt.letters) {
				t.Errorf("expected %d letter containers, got %d", len(tt.letters), n)
			}
		})
	}
}
