package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	for _, kind := range []string{"", Text, Markdown, HTML} {
		f, err := NewFormatter(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, f)
	}

	_, err := NewFormatter("pdf")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	story := "[Micro Mystery – Dark]\n\nThe door was open.\n\n✨ The End ✨"

	tests := []struct {
		name     string
		kind     string
		req      *FormatRequest
		contains []string
		changed  bool
	}{
		{
			name:     "text passthrough",
			kind:     Text,
			req:      &FormatRequest{Content: story, Story: true},
			contains: []string{story},
		},
		{
			name:     "markdown fences stories",
			kind:     Markdown,
			req:      &FormatRequest{Content: story, Story: true},
			contains: []string{"```text\n[Micro Mystery – Dark]", "✨ The End ✨\n```"},
			changed:  true,
		},
		{
			name:     "markdown keeps plain replies",
			kind:     Markdown,
			req:      &FormatRequest{Content: "Hello!"},
			contains: []string{"Hello!"},
		},
		{
			name:     "html paragraph",
			kind:     HTML,
			req:      &FormatRequest{Content: "Hello!"},
			contains: []string{"<p>Hello!</p>"},
			changed:  true,
		},
		{
			name:     "html list",
			kind:     HTML,
			req:      &FormatRequest{Content: "Genres:\n\n- Fantasy\n- Romance"},
			contains: []string{"<li>Fantasy</li>", "<li>Romance</li>"},
			changed:  true,
		},
		{
			name:     "html story is preformatted",
			kind:     HTML,
			req:      &FormatRequest{Content: story, Story: true},
			contains: []string{"<pre><code", "The door was open."},
			changed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.kind)
			require.NoError(t, err)

			resp, err := f.Format(tt.req)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(resp.Formatted, want), "missing %q in %q", want, resp.Formatted)
			}
			assert.Equal(t, tt.changed, resp.Changed)
		})
	}
}
