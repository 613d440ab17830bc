package goquery_test

import (
	"testing"

	"github.com/seoentity/seoentity/goquery"
	"github.com/stretchr/testify/assert"
)

func TestVisibleExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("drops navigation and keeps body text", func(t *testing.T) {
		t.Parallel()

		html := `<body><nav>Menu</nav><p>Paris is the capital of France.</p></body>`

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "Paris is the capital of France.", text)
	})

	t.Run("removes scripts, styles, metadata and noscript", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
	<title>Page Title</title>
	<meta name="description" content="meta text">
	<style>body { color: red; }</style>
	<script>var secret = "head script";</script>
</head>
<body>
	<script>console.log("body script")</script>
	<noscript>Enable JavaScript</noscript>
	<p>Visible paragraph.</p>
	<style>.x{}</style>
</body>
</html>`

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "Visible paragraph.", text)
	})

	t.Run("removes footer and aside", func(t *testing.T) {
		t.Parallel()

		html := `<body>
<main><h1>Heading</h1><p>Body copy.</p></main>
<aside>Related links</aside>
<footer>Copyright 2024</footer>
</body>`

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "Heading Body copy.", text)
	})

	t.Run("removes boilerplate class and id tokens", func(t *testing.T) {
		t.Parallel()

		html := `<body>
<div class="layout sidebar">Sidebar text</div>
<div id="header">Header text</div>
<div class="menu">Menu text</div>
<div id="footer">Footer text</div>
<ul class="nav main">Nav text</ul>
<article>Article text</article>
</body>`

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "Article text", text)
	})

	t.Run("matches boilerplate tokens exactly and case-sensitively", func(t *testing.T) {
		t.Parallel()

		html := `<body>
<div class="Menu">Capital menu</div>
<div class="navigation">Longer token</div>
<div id="sidebar-left">Prefixed id</div>
</body>`

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "Capital menu Longer token Prefixed id", text)
	})

	t.Run("ignores comments", func(t *testing.T) {
		t.Parallel()

		html := `<body><p>Before</p><!-- hidden comment --><p>After</p></body>`

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "Before After", text)
	})

	t.Run("joins trimmed text nodes with single spaces", func(t *testing.T) {
		t.Parallel()

		html := "<body><p>  one  </p>\n\n<p>\ttwo</p><span>three</span>four</body>"

		text := goquery.NewVisibleExtractor().Extract(html)

		assert.Equal(t, "one two three four", text)
	})

	t.Run("handles fragments without a body tag", func(t *testing.T) {
		t.Parallel()

		text := goquery.NewVisibleExtractor().Extract(`<p>Just a fragment</p><footer>x</footer>`)

		assert.Equal(t, "Just a fragment", text)
	})

	t.Run("degrades gracefully on malformed markup", func(t *testing.T) {
		t.Parallel()

		text := goquery.NewVisibleExtractor().Extract(`<div><p>Unclosed <b>bold<div>next</p></span>`)

		assert.Equal(t, "Unclosed bold next", text)
	})

	t.Run("returns plain text input unchanged", func(t *testing.T) {
		t.Parallel()

		text := goquery.NewVisibleExtractor().Extract("just words here")

		assert.Equal(t, "just words here", text)
	})

	t.Run("returns empty string for empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, goquery.NewVisibleExtractor().Extract(""))
	})
}

func TestVisibleExtractor_NeverIncludesExcludedElements(t *testing.T) {
	t.Parallel()

	pages := []string{
		`<html><body><script>SECRET</script><p>ok</p></body></html>`,
		`<body><nav><ul><li>SECRET</li></ul></nav><p>ok</p></body>`,
		`<body><div><footer><p>SECRET</p></footer></div><p>ok</p></body>`,
		`<body><aside>SECRET</aside><p>ok</p><style>SECRET</style></body>`,
		`<p>ok</p><script>SECRET`,
		`<body><nav>SECRET<p>ok`,
	}

	for _, page := range pages {
		text := goquery.NewVisibleExtractor().Extract(page)
		assert.NotContains(t, text, "SECRET", "page %q", page)
	}
}

func TestVisibleExtractor_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "visible", goquery.NewVisibleExtractor().Name())
}
