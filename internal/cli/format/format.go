// Package format renders workflow results and tables for the terminal.
package format

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/davidwuwu001/coze-workflow-api/internal/render"
)

// maxRenderSize is the largest payload that gets terminal styling.
// Bigger payloads are printed as plain text.
const maxRenderSize = 2 * 1024 * 1024

// ansiEscapeRegex matches CSI and OSC escape sequences.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

var (
	linkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	indexStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Options controls result rendering.
type Options struct {
	// TTY enables colors, hyperlinks and markdown rendering.
	TTY bool

	// Markdown renders plain-text results as markdown on a TTY.
	Markdown bool

	// Width is the markdown word-wrap width. Zero means 100.
	Width int
}

// sanitizeANSI removes escape sequences carried in remote payloads.
func sanitizeANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// Result renders a formatted document. Without a TTY the normalized text is
// returned unchanged so output stays pipeable.
func Result(doc render.Document, opts Options) string {
	if !opts.TTY || len(doc.Text) > maxRenderSize {
		return doc.Text
	}

	if doc.Structured {
		if out, err := highlightJSON(sanitizeANSI(doc.Text)); err == nil {
			return out
		}
	} else if opts.Markdown {
		if out, err := markdown(sanitizeANSI(doc.Text), opts.Width); err == nil {
			return out
		}
	}

	var b strings.Builder
	for _, seg := range doc.Segments {
		text := sanitizeANSI(seg.Text)
		if seg.Kind == render.Link {
			b.WriteString(Hyperlink(text, linkStyle.Render(text)))
			continue
		}
		b.WriteString(text)
	}
	return b.String()
}

// Links renders a numbered list of the document's links, one per line.
// It returns an empty string when there are none.
func Links(doc render.Document, tty bool) string {
	links := doc.Links()
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	for i, link := range links {
		link = sanitizeANSI(link)
		label := fmt.Sprintf("[%d]", i+1)
		if tty {
			fmt.Fprintf(&b, "%s %s\n", indexStyle.Render(label), Hyperlink(link, linkStyle.Render(link)))
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", label, link)
	}
	return b.String()
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink to url.
func Hyperlink(url, text string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

func highlightJSON(content string) (string, error) {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, "json", "terminal256", "monokai"); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func markdown(content string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
