package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

var discardLogger = log.New(io.Discard)

// Extractor holds the rules of one institution.
//
// Rules are registered once and are read only afterwards, so an Extractor can be shared by
// concurrent extractions.
type Extractor struct {
	label       string
	identifiers []string
	types       []*DocumentType
	logger      *log.Logger
	policy      ConflictPolicy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger receiving extraction diagnostics. Output is discarded by default.
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConflictPolicy sets how conflicting tax and fee entries are resolved.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(e *Extractor) { e.policy = p }
}

// NewExtractor returns an extractor without rules. label is reported as the source of the items.
func NewExtractor(label string, opts ...Option) *Extractor {
	e := &Extractor{label: label, logger: discardLogger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Label returns the extractor label.
func (e *Extractor) Label() string { return e.label }

// AddBankIdentifier registers strings identifying the institution in a document text.
func (e *Extractor) AddBankIdentifier(ids ...string) *Extractor {
	e.identifiers = append(e.identifiers, ids...)
	return e
}

// AddDocumentType registers document types. They are tried in registration order.
func (e *Extractor) AddDocumentType(types ...*DocumentType) *Extractor {
	e.types = append(e.types, types...)
	return e
}

// DocumentTypes returns the registered document types.
func (e *Extractor) DocumentTypes() []*DocumentType { return e.types }

// Recognizes reports whether one of the bank identifiers occurs in the document.
func (e *Extractor) Recognizes(doc *RawDocument) bool {
	for _, id := range e.identifiers {
		if strings.Contains(doc.Text(), id) {
			return true
		}
	}
	return false
}

// Identify returns the names of the document types accepting doc.
func (e *Extractor) Identify(doc *RawDocument) []string {
	if !e.Recognizes(doc) {
		return nil
	}
	var names []string
	for _, dt := range e.types {
		if dt.Matches(doc.Text()) {
			names = append(names, dt.Name())
		}
	}
	return names
}

// Result is the outcome of extracting one document.
type Result struct {
	Source   string
	Items    []*Item
	Failures []error // block occurrences that produced no item, as *BlockError
	Err      error   // document level error, only set by Registry.ExtractAll
}

// Extract runs every document type accepting doc, each with a fresh Context.
//
// It returns ErrUnrecognizedDocument when no bank identifier or no document type matches.
// Failures local to a block are reported in the Result.
func (e *Extractor) Extract(doc *RawDocument) (*Result, error) {
	if !e.Recognizes(doc) {
		return nil, fmt.Errorf("%s: %w: no %s identifier", doc.Source(), ErrUnrecognizedDocument, e.label)
	}
	res := &Result{Source: doc.Source()}
	matched := false
	for _, dt := range e.types {
		if !dt.Matches(doc.Text()) {
			continue
		}
		matched = true
		ctx := NewContext(e.policy)
		ctx.logger = e.logger.With("document", doc.Source(), "type", dt.Name())
		ctx.logger.Debug("document type matched")

		items, failures := dt.extract(doc, ctx)
		for _, it := range items {
			it.source = e.label
		}
		res.Items = append(res.Items, items...)
		res.Failures = append(res.Failures, failures...)
	}
	if !matched {
		return nil, fmt.Errorf("%s: %w: no %s document type matches", doc.Source(), ErrUnrecognizedDocument, e.label)
	}
	e.logger.Debug("extracted", "document", doc.Source(), "items", len(res.Items), "failures", len(res.Failures))
	return res, nil
}
