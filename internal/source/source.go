package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
)

// Span is a half-open byte range [Start, End) into one source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

// ParseError is returned when an input file does not parse. It is fatal for
// that file only; callers processing a batch continue with the other files.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// File is one parsed source file: the immutable AST root, the fileset that
// anchors every node to a byte offset, and the original text. A File is owned
// by a single search pass and must not be mutated.
type File struct {
	Filename string
	Text     string
	Fset     *token.FileSet
	Root     *ast.File
}

// Parse parses src and returns a File. The filename is used for positions
// only; src is never read from disk.
func Parse(filename string, src string) (*File, error) {
	fset := token.NewFileSet()
	root, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			err = list[0]
		}
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return &File{Filename: filename, Text: src, Fset: fset, Root: root}, nil
}

// SpanOf maps a node back to its byte range in the original text.
func (f *File) SpanOf(n ast.Node) Span {
	tf := f.Fset.File(f.Root.Pos())
	return Span{Start: tf.Offset(n.Pos()), End: tf.Offset(n.End())}
}

// Slice returns the original text covered by span, formatting and interior
// comments intact.
func (f *File) Slice(s Span) string {
	return f.Text[s.Start:s.End]
}

// TextOf is shorthand for Slice(SpanOf(n)).
func (f *File) TextOf(n ast.Node) string {
	return f.Slice(f.SpanOf(n))
}
