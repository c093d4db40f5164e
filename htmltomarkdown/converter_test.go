package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/opdscli"
	"github.com/fwojciec/opdscli/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements opdscli.Converter at compile time.
var _ opdscli.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts basic paragraph", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<p>A pirate adventure.</p>`)

		require.NoError(t, err)
		assert.Equal(t, "A pirate adventure.", md)
	})

	t.Run("converts links", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<p>From <a href="https://www.gutenberg.org">Project Gutenberg</a>.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "[Project Gutenberg](https://www.gutenberg.org)")
	})

	t.Run("converts unordered lists", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<ul><li>Adventure</li><li>Pirates</li></ul>`)

		require.NoError(t, err)
		assert.Contains(t, md, "- Adventure")
		assert.Contains(t, md, "- Pirates")
	})

	t.Run("converts bold and italic", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<p><strong>Bold</strong> and <em>italic</em> text.</p>`)

		require.NoError(t, err)
		assert.Contains(t, md, "**Bold**")
		assert.Contains(t, md, "*italic*")
	})

	t.Run("converts blockquotes", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<blockquote><p>Fifteen men on the dead man's chest.</p></blockquote>`)

		require.NoError(t, err)
		assert.Contains(t, md, "> Fifteen men on the dead man's chest.")
	})

	t.Run("converts tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<thead><tr><th>Edition</th><th>Year</th></tr></thead>
<tbody><tr><td>First</td><td>1883</td></tr></tbody>
</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Edition")
		assert.Contains(t, md, "1883")
		assert.Contains(t, md, "|")
		assert.Contains(t, md, "---")
	})

	t.Run("decodes entities", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(`<p>War &amp; Peace</p>`)

		require.NoError(t, err)
		assert.Equal(t, "War & Peace", md)
	})

	t.Run("returns empty result for blank input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert("  \n ")

		require.NoError(t, err)
		assert.Empty(t, md)
	})
}
