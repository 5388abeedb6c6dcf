// Package render converts markdown documents into HTML.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown source into HTML.
type Renderer interface {
	Render(src []byte) ([]byte, error)
}

// New returns the renderer with the given name, "blackfriday" or "goldmark".
func New(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "blackfriday":
		return Blackfriday{}, nil
	case "goldmark":
		return NewGoldmark(), nil
	}
	return nil, fmt.Errorf("render: unknown renderer %q", name)
}

// Blackfriday renders markdown with blackfriday using the common extensions
// plus footnotes.
type Blackfriday struct{}

// Render implements Renderer.
func (Blackfriday) Render(src []byte) ([]byte, error) {
	return blackfriday.Run(src, blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes)), nil
}

// Goldmark renders GitHub flavored markdown with goldmark. It is stateless
// and safe for concurrent use.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark creates a Goldmark renderer with GFM, linkify and task lists,
// automatic heading IDs, and raw HTML passed through.
func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render implements Renderer.
func (g *Goldmark) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("goldmark: %w", err)
	}
	return buf.Bytes(), nil
}
