package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidwuwu001/coze-workflow-api/internal/render"
)

func TestResult_NoTTY(t *testing.T) {
	doc := render.Format(`{"url":"https://x.test/a"}`)
	got := Result(doc, Options{TTY: false})
	assert.Equal(t, doc.Text, got)
}

func TestResult_TTYPlainText(t *testing.T) {
	doc := render.Format("report at https://x.test/r ready")
	got := Result(doc, Options{TTY: true})

	assert.Contains(t, got, "report at ")
	assert.Contains(t, got, "\x1b]8;;https://x.test/r\x1b\\")
	assert.Contains(t, got, " ready")
}

func TestResult_TTYStructured(t *testing.T) {
	doc := render.Format(`{"key":"value"}`)
	got := Result(doc, Options{TTY: true})
	assert.Contains(t, sanitizeANSI(got), `"key"`)
	assert.Contains(t, sanitizeANSI(got), `"value"`)
}

func TestResult_TTYMarkdown(t *testing.T) {
	doc := render.Format("# Heading\n\nSome text")
	got := Result(doc, Options{TTY: true, Markdown: true, Width: 60})
	assert.Contains(t, got, "Heading")
	assert.Contains(t, got, "Some text")
}

func TestResult_StripsRemoteEscapes(t *testing.T) {
	doc := render.Format("\x1b[31mred\x1b[0m text")
	got := Result(doc, Options{TTY: true})
	assert.Equal(t, "red text", got)
}

func TestLinks(t *testing.T) {
	doc := render.Format("a https://a.test b https://b.test")

	assert.Equal(t, "[1] https://a.test\n[2] https://b.test\n", Links(doc, false))

	tty := Links(doc, true)
	assert.Contains(t, tty, "\x1b]8;;https://b.test\x1b\\")
	assert.Equal(t, 2, strings.Count(tty, "\n"))

	assert.Empty(t, Links(render.Format("no links"), false))
}

func TestSanitizeANSI(t *testing.T) {
	assert.Equal(t, "plain", sanitizeANSI("\x1b[1mplain\x1b[0m"))
	assert.Equal(t, "link", sanitizeANSI("\x1b]8;;https://x.test\x1b\\link\x1b]8;;\x1b\\"))
}

func TestIsTerminal_NonFile(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "")
	assert.False(t, IsTerminal(&strings.Builder{}))
}

func TestIsTerminal_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, IsTTY())
}
