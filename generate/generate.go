/*
Package generate renders a tree of markdown documents into HTML pages.

Documents are files ending in ".md" anywhere below the source directory.
Each one is converted with a render.Renderer and written to the destination
directory. By default the page mirrors the source path:

	content/index.md      -> public/index.html
	content/blog/first.md -> public/blog/first.html

The NameByContent policy instead names each page after the text of its
document, which is how the earliest version of this tool behaved. It is kept
for compatibility only. Such names are not sanitized: text containing a path
separator needs the folder to exist already, and a page whose name would land
outside the destination directory stops the run with ErrOutsideDest.
*/
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ancientlore/scribe/logging"
	"github.com/ancientlore/scribe/render"
)

// HTMLExt is the extension of rendered pages.
const HTMLExt = ".html"

// ErrOutsideDest is returned for a page that would be written outside the
// destination directory.
var ErrOutsideDest = errors.New("page is outside the destination directory")

// Naming decides the destination file name of a document.
type Naming int

const (
	// NameByPath swaps the markdown extension of the source path for ".html".
	NameByPath Naming = iota
	// NameByContent appends ".html" to the raw document text.
	NameByContent
)

// ParseNaming converts "path" or "content" into a Naming.
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "path":
		return NameByPath, nil
	case "content":
		return NameByContent, nil
	}
	return NameByPath, fmt.Errorf("unknown naming policy %q", s)
}

func (n Naming) String() string {
	if n == NameByContent {
		return "content"
	}
	return "path"
}

// Target returns the destination path of doc below dest.
func (n Naming) Target(dest string, doc Document) string {
	if n == NameByContent {
		return filepath.Join(dest, string(doc.Body)+HTMLExt)
	}
	name := strings.TrimSuffix(doc.Path, path.Ext(doc.Path)) + HTMLExt
	return filepath.Join(dest, filepath.FromSlash(name))
}

// Generator renders the documents of Source into Dest.
type Generator struct {
	Source   string
	Dest     string
	Renderer render.Renderer
	Naming   Naming
	Policy   Policy
	Log      logging.Logger
}

// Report describes the outcome of a run.
type Report struct {
	Found   int       // documents read
	Written []string  // destination paths, in source order
	Skipped []Skipped // sources that could not be read
}

// Generate reads all documents, then writes one page for each of them.
// Destination directory, render, and write failures stop the run.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	log := g.Log
	if log == nil {
		log = logging.Nop()
	}
	rdr := g.Renderer
	if rdr == nil {
		rdr = render.Blackfriday{}
	}

	docs, skipped, err := Walk(os.DirFS(g.Source), g.Policy)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	for _, s := range skipped {
		log.Warn("skipping unreadable source", "path", s.Path, "error", s.Err)
	}
	log.Info(fmt.Sprintf("Found %d markdown files", len(docs)), "source", g.Source, "policy", g.Policy.String())

	report := &Report{Found: len(docs), Skipped: skipped}

	err = os.MkdirAll(g.Dest, 0755)
	if err != nil {
		return report, fmt.Errorf("generate: cannot create destination: %w", err)
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("generate: %w", err)
		}
		html, err := rdr.Render(doc.Body)
		if err != nil {
			return report, fmt.Errorf("generate: render %s: %w", doc.Path, err)
		}
		target := g.Naming.Target(g.Dest, doc)
		if !within(g.Dest, target) {
			return report, fmt.Errorf("generate: %s: %w", doc.Path, ErrOutsideDest)
		}
		if g.Naming == NameByPath {
			err = os.MkdirAll(filepath.Dir(target), 0755)
			if err != nil {
				return report, fmt.Errorf("generate: %w", err)
			}
		}
		err = os.WriteFile(target, html, 0644)
		if err != nil {
			return report, fmt.Errorf("generate: %w", err)
		}
		log.Debug("wrote page", "source", doc.Path, "target", target, "bytes", len(html))
		report.Written = append(report.Written, target)
	}

	log.Info(fmt.Sprintf("Generated %d HTML files", len(report.Written)), "dest", g.Dest, "naming", g.Naming.String())
	return report, nil
}

// within reports whether target is below dir.
func within(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
