package htmltomarkdown_test

import (
	"testing"

	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ doclens.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	conv := htmltomarkdown.NewConverter()

	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "headings",
			html: `<h1>Install</h1><h2>Requirements</h2>`,
			want: []string{"# Install", "## Requirements"},
		},
		{
			name: "unordered list",
			html: `<ul><li>Download</li><li>Configure</li></ul>`,
			want: []string{"- Download", "- Configure"},
		},
		{
			name: "fenced code",
			html: `<pre><code class="language-go">fmt.Println("hi")</code></pre>`,
			want: []string{"```go", `fmt.Println("hi")`, "```"},
		},
		{
			name: "links",
			html: `<p>See <a href="https://example.com/docs">the docs</a>.</p>`,
			want: []string{"[the docs](https://example.com/docs)"},
		},
		{
			name: "tables",
			html: `<table><thead><tr><th>Flag</th><th>Default</th></tr></thead><tbody><tr><td>limit</td><td>10</td></tr></tbody></table>`,
			want: []string{"| Flag", "| limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md, err := conv.Convert(tt.html)

			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, md, w)
			}
		})
	}
}

func TestConverter_Convert_trims_output(t *testing.T) {
	t.Parallel()

	md, err := htmltomarkdown.NewConverter().Convert(`<p>Hello, world!</p>`)

	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", md)
}

func TestConverter_Convert_rejects_empty_input(t *testing.T) {
	t.Parallel()

	_, err := htmltomarkdown.NewConverter().Convert("   ")

	assert.Equal(t, doclens.EINVALID, doclens.ErrorCode(err))
}
