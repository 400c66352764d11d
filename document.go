package statement

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RawDocument is the text of one statement split into lines.
type RawDocument struct {
	source string
	text   string
	lines  []string
}

// NewRawDocument normalizes text to NFC with '\n' line endings and splits it into lines.
//
// PDF text extractors often print umlauts decomposed ("u" + U+0308), rules are written composed.
func NewRawDocument(source, text string) *RawDocument {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return &RawDocument{
		source: source,
		text:   text,
		lines:  strings.Split(strings.TrimSuffix(text, "\n"), "\n"),
	}
}

// Source identifies the document, usually its file name.
func (d *RawDocument) Source() string { return d.source }

// Text returns the normalized text.
func (d *RawDocument) Text() string { return d.text }

// Lines returns the lines, without their line ending.
func (d *RawDocument) Lines() []string { return d.lines }

// DocumentType classifies documents by a signature and owns the blocks extracted from them.
type DocumentType struct {
	name      string
	signature *regexp.Regexp
	blocks    []*Block
}

// NewDocumentType returns a document type accepting documents whose text contains a match of
// signature. It panics if signature does not compile.
func NewDocumentType(name, signature string) *DocumentType {
	d, err := CompileDocumentType(name, signature)
	if err != nil {
		panic(err)
	}
	return d
}

// CompileDocumentType is like NewDocumentType but returns an error.
func CompileDocumentType(name, signature string) (*DocumentType, error) {
	re, err := regexp.Compile(signature)
	if err != nil {
		return nil, fmt.Errorf("document type %q: invalid signature: %w", name, err)
	}
	return &DocumentType{name: name, signature: re}, nil
}

// AddBlock appends blocks. Blocks are extracted in registration order.
func (d *DocumentType) AddBlock(blocks ...*Block) *DocumentType {
	d.blocks = append(d.blocks, blocks...)
	return d
}

// Name returns the document type name.
func (d *DocumentType) Name() string { return d.name }

// Blocks returns the number of registered blocks.
func (d *DocumentType) Blocks() int { return len(d.blocks) }

// Matches reports whether the signature occurs anywhere in text.
func (d *DocumentType) Matches(text string) bool { return d.signature.MatchString(text) }

// extract runs every block over the document with a single shared ctx.
func (d *DocumentType) extract(doc *RawDocument, ctx *Context) ([]*Item, []error) {
	var items []*Item
	var failures []error
	for _, b := range d.blocks {
		its, errs := b.extract(doc.Lines(), d.name, ctx)
		items = append(items, its...)
		failures = append(failures, errs...)
	}
	return items, failures
}
