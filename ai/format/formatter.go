// Package format renders PlotBuddy replies for the terminal.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Output formats.
const (
	Text     = "text"
	Markdown = "markdown"
	HTML     = "html"
)

// Formatter turns a reply into the configured output format.
type Formatter interface {
	Format(req *FormatRequest) (*FormatResponse, error)
}

type FormatRequest struct {
	Content string
	Story   bool // generated story text, fenced in markdown output
}

type FormatResponse struct {
	Formatted string
	Changed   bool
}

// NewFormatter returns the formatter for kind (text, markdown or html).
func NewFormatter(kind string) (Formatter, error) {
	switch kind {
	case "", Text:
		return textFormatter{}, nil
	case Markdown:
		return markdownFormatter{}, nil
	case HTML:
		return &htmlFormatter{
			md: goldmark.New(
				goldmark.WithExtensions(extension.GFM),
				goldmark.WithRendererOptions(html.WithHardWraps()),
			),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", kind)
	}
}

type textFormatter struct{}

func (textFormatter) Format(req *FormatRequest) (*FormatResponse, error) {
	return &FormatResponse{Formatted: req.Content}, nil
}

type markdownFormatter struct{}

func (markdownFormatter) Format(req *FormatRequest) (*FormatResponse, error) {
	formatted := toMarkdown(req)
	return &FormatResponse{Formatted: formatted, Changed: formatted != req.Content}, nil
}

func toMarkdown(req *FormatRequest) string {
	content := strings.TrimSpace(req.Content)
	if !req.Story || content == "" {
		return content
	}
	return "```text\n" + content + "\n```"
}

type htmlFormatter struct {
	md goldmark.Markdown
}

func (f *htmlFormatter) Format(req *FormatRequest) (*FormatResponse, error) {
	var buf bytes.Buffer
	if err := f.md.Convert([]byte(toMarkdown(req)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return &FormatResponse{Formatted: buf.String(), Changed: true}, nil
}
