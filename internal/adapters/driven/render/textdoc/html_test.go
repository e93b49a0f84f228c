package textdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, looksLikeHTML("<!DOCTYPE html><html></html>"))
	assert.True(t, looksLikeHTML("  \n<html lang=\"en\">"))
	assert.True(t, looksLikeHTML("<!-- generated --><body>hi</body>"))
	assert.False(t, looksLikeHTML("plain text with <b>tags</b>"))
	assert.False(t, looksLikeHTML("<htmlish>"))
}

func TestOpen_HTMLPages(t *testing.T) {
	doc := open(t, `<!DOCTYPE html>
<html><head><title>Report</title><style>p{}</style></head>
<body>
  <h1>Report</h1>
  <p>First   paragraph
     wraps here.</p>
  <hr>
  <p>Second <b>page</b>.</p>
  <div class="page"><ul><li>one</li><li>two</li></ul></div>
  <script>ignored()</script>
</body></html>`)

	require.Equal(t, 3, doc.PageCount())
	assert.Equal(t, []string{"Report", "First paragraph wraps here."}, pageLines(t, doc, 0))
	assert.Equal(t, []string{"Second page."}, pageLines(t, doc, 1))
	assert.Equal(t, []string{"• one", "• two"}, pageLines(t, doc, 2))
}

func TestOpen_HTMLPreformatted(t *testing.T) {
	doc := open(t, "<html><body><pre>\nfunc main() {\n  run()\n}</pre></body></html>")

	assert.Equal(t, []string{"func main() {", "  run()", "}"}, pageLines(t, doc, 0))
}

func TestOpen_HTMLLineBreaks(t *testing.T) {
	doc := open(t, "<html><body>one<br>two<br/>three</body></html>")

	assert.Equal(t, []string{"one", "two", "three"}, pageLines(t, doc, 0))
}

func TestOpen_HTMLEmptyBody(t *testing.T) {
	doc := open(t, "<html><body><hr><hr></body></html>")

	require.Equal(t, 1, doc.PageCount())
	assert.Equal(t, []string{""}, pageLines(t, doc, 0))
}
