package statement

import (
	"errors"
	"fmt"
	"regexp"
)

// Block is a span of lines starting at a marker line, processed by one Pipeline.
//
// A block may occur several times in a document. The span of an occurrence ends on the end marker
// (included), before the next start marker, after the maximum number of lines, or at the end of
// the document, whichever comes first.
type Block struct {
	start    *regexp.Regexp
	end      *regexp.Regexp
	maxLines int
	pipeline Pipeline
}

// NewBlock returns a block starting on lines matching start. It panics if start does not compile.
func NewBlock(start string, p Pipeline) *Block {
	b, err := CompileBlock(start, p)
	if err != nil {
		panic(err)
	}
	return b
}

// CompileBlock is like NewBlock but returns an error.
func CompileBlock(start string, p Pipeline) (*Block, error) {
	re, err := regexp.Compile(start)
	if err != nil {
		return nil, fmt.Errorf("invalid block start %q: %w", start, err)
	}
	if p == nil {
		return nil, errors.New("block without transaction")
	}
	return &Block{start: re, pipeline: p}, nil
}

// WithEnd sets the end marker. It panics if end does not compile.
func (b *Block) WithEnd(end string) *Block {
	if err := b.SetEnd(end); err != nil {
		panic(err)
	}
	return b
}

// SetEnd is like WithEnd but returns an error.
func (b *Block) SetEnd(end string) error {
	re, err := regexp.Compile(end)
	if err != nil {
		return fmt.Errorf("invalid block end %q: %w", end, err)
	}
	b.end = re
	return nil
}

// WithMaxLines bounds the span of each occurrence to n lines, start line included. Zero means
// unbounded.
func (b *Block) WithMaxLines(n int) *Block {
	b.maxLines = max(n, 0)
	return b
}

// Span is the [Start, End) range of line indexes of a block occurrence.
type Span struct {
	Start, End int
}

type blockState int

const (
	seeking blockState = iota
	collecting
)

// Spans returns the non overlapping occurrences of the block in lines.
func (b *Block) Spans(lines []string) []Span {
	var spans []Span
	state := seeking
	var cur Span
	emit := func(end int) {
		cur.End = end
		spans = append(spans, cur)
		state = seeking
	}
	for i := 0; i < len(lines); {
		switch state {
		case seeking:
			if b.start.MatchString(lines[i]) {
				cur = Span{Start: i}
				state = collecting
			}
			i++
		case collecting:
			switch {
			case b.maxLines > 0 && i-cur.Start >= b.maxLines:
				emit(i)
			case b.end != nil && b.end.MatchString(lines[i]):
				i++
				emit(i)
			case b.start.MatchString(lines[i]):
				// the next occurrence starts here.
				emit(i)
			default:
				i++
			}
		}
	}
	if state == collecting {
		emit(len(lines))
	}
	return spans
}

// extract runs the pipeline over every occurrence. Failed occurrences are reported as
// *BlockError and do not prevent the others.
func (b *Block) extract(lines []string, docType string, ctx *Context) ([]*Item, []error) {
	var items []*Item
	var failures []error
	for _, span := range b.Spans(lines) {
		log := ctx.Logger().With("line", span.Start+1)
		log.Debug("block occurrence", "first", lines[span.Start], "lines", span.End-span.Start)

		item, err := b.pipeline.run(lines[span.Start:span.End], ctx)
		if err != nil {
			var be *BlockError
			if !errors.As(err, &be) {
				be = &BlockError{Err: err}
			}
			be.DocumentType, be.Line = docType, span.Start+1
			log.Debug("block abandoned", "err", be.Err, "section", be.Section)
			failures = append(failures, be)
			continue
		}
		if item == nil {
			log.Debug("block discarded")
			continue
		}
		items = append(items, item)
	}
	return items, failures
}
