package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"unicode/utf8"
)

// Ext is the extension of markdown documents.
const Ext = ".md"

// Document is a markdown file read from the source tree.
type Document struct {
	Path string // slash separated, relative to the source root
	Body []byte
}

// Skipped is a source path that could not be read.
type Skipped struct {
	Path string
	Err  error
}

// Policy decides what happens when part of the source tree cannot be read.
type Policy int

const (
	// Lenient skips unreadable files and directories.
	Lenient Policy = iota
	// Strict fails on the first unreadable file or directory.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// Errors recorded for documents and folders that are not walked.
var (
	ErrNotUTF8   = errors.New("document is not valid UTF-8")
	ErrLinkCycle = errors.New("symbolic link refers to an enclosing folder")
)

// maxLinks bounds nested symbolic links for file systems whose file info
// cannot be compared with os.SameFile.
const maxLinks = 40

// Walk reads every markdown document below the root of fsys in lexical order.
// Symbolic links to folders are followed unless they lead back into a folder
// being walked. A missing root is an empty tree unless the policy is Strict.
func Walk(fsys fs.FS, policy Policy) ([]Document, []Skipped, error) {
	w := &walker{policy: policy}
	err := w.walk(fsys, "", nil, 0)
	if err != nil {
		return nil, w.skipped, fmt.Errorf("walk: %w", err)
	}
	return w.docs, w.skipped, nil
}

type walker struct {
	policy  Policy
	docs    []Document
	skipped []Skipped
}

// skip records an unreadable path, or returns err under the Strict policy.
func (w *walker) skip(name string, err error) error {
	if w.policy == Strict {
		return err
	}
	w.skipped = append(w.skipped, Skipped{Path: name, Err: err})
	return nil
}

// walk collects the documents of fsys, naming them below prefix. parents
// holds the folders enclosing fsys that were left through symbolic links; links counts them.
func (w *walker) walk(fsys fs.FS, prefix string, parents []fs.FileInfo, links int) error {
	return fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		full := path.Join(prefix, name)
		if err != nil {
			if prefix == "" && name == "." && errors.Is(err, fs.ErrNotExist) && w.policy != Strict {
				return fs.SkipAll
			}
			if serr := w.skip(full, err); serr != nil {
				return serr
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if fi, err := fs.Stat(fsys, name); err == nil && fi.IsDir() {
				return w.link(fsys, name, full, fi, parents, links+1)
			}
		}
		if d.IsDir() || path.Ext(name) != Ext {
			return nil
		}
		b, err := fs.ReadFile(fsys, name)
		if err == nil && !utf8.Valid(b) {
			err = &fs.PathError{Op: "read", Path: name, Err: ErrNotUTF8}
		}
		if err != nil {
			return w.skip(full, err)
		}
		w.docs = append(w.docs, Document{Path: full, Body: b})
		return nil
	})
}

// link walks the folder that the symbolic link name points to.
func (w *walker) link(fsys fs.FS, name, full string, target fs.FileInfo, parents []fs.FileInfo, links int) error {
	enclosing := append([]fs.FileInfo(nil), parents...)
	for dir := path.Dir(name); ; dir = path.Dir(dir) {
		if fi, err := fs.Stat(fsys, dir); err == nil {
			enclosing = append(enclosing, fi)
		}
		if dir == "." {
			break
		}
	}
	cycle := links > maxLinks
	for _, fi := range enclosing {
		if os.SameFile(fi, target) {
			cycle = true
			break
		}
	}
	if cycle {
		return w.skip(full, &fs.PathError{Op: "walk", Path: name, Err: ErrLinkCycle})
	}
	sub, err := fs.Sub(fsys, name)
	if err != nil {
		return w.skip(full, err)
	}
	return w.walk(sub, full, append(enclosing, target), links)
}
