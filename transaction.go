package statement

import (
	"errors"
	"fmt"
)

// Pipeline runs over the lines of one block occurrence. It is implemented by *Transaction[T].
type Pipeline interface {
	run(lines []string, ctx *Context) (*Item, error)
}

// Transaction is the ordered pipeline of sections populating one builder per block occurrence.
type Transaction[T Builder] struct {
	subject  func(ctx *Context) T
	sections []*Section[T]
	wrap     func(b T, ctx *Context) (*Item, error)
}

// NewTransaction returns a pipeline creating its builder with subject and finalizing it with
// wrap. A wrap returning a nil item discards the block occurrence.
func NewTransaction[T Builder](subject func(*Context) T, wrap func(T, *Context) (*Item, error)) *Transaction[T] {
	return &Transaction[T]{subject: subject, wrap: wrap}
}

// Section appends sections to the pipeline. It panics if a pattern does not compile, see
// AddSection for an error returning version.
func (t *Transaction[T]) Section(sections ...Section[T]) *Transaction[T] {
	for _, s := range sections {
		if err := t.AddSection(s); err != nil {
			panic(err)
		}
	}
	return t
}

// AddSection compiles s and appends it to the pipeline.
func (t *Transaction[T]) AddSection(s Section[T]) error {
	if err := s.compile(); err != nil {
		return err
	}
	t.sections = append(t.sections, &s)
	return nil
}

// Len returns the number of sections.
func (t *Transaction[T]) Len() int { return len(t.sections) }

// run executes every section in declared order. Each section searches the whole block, so
// optional lines may be printed in any order.
func (t *Transaction[T]) run(lines []string, ctx *Context) (*Item, error) {
	b := t.subject(ctx)
	for _, s := range t.sections {
		v, _, ok := s.Match(lines, 0)
		var err error
		if ok && s.Assign != nil {
			err = s.Assign(b, v, ctx)
		}
		if ok && err == nil {
			continue
		}
		if errors.Is(err, ErrConflictingTaxEntry) || errors.Is(err, ErrConflictingFeeEntry) {
			// only returned under Reject, optional or not.
			return nil, &BlockError{Section: s.label(), Err: err}
		}
		if s.Optional {
			if err != nil {
				ctx.Logger().Debug("optional section skipped", "section", s.label(), "err", err)
			}
			continue
		}
		if err == nil {
			err = errors.New("no matching lines")
		}
		return nil, &BlockError{Section: s.label(), Err: fmt.Errorf("%w: %w", ErrMandatorySectionUnmatched, err)}
	}
	item, err := t.wrap(b, ctx)
	if err != nil {
		return nil, &BlockError{Err: err}
	}
	return item, nil
}

// WrapBuySell finalizes a buy or a sell. It fails with ErrIncompleteItem when no amount was found.
func WrapBuySell(b *BuySellEntry, ctx *Context) (*Item, error) { return wrapRequired(b, ctx) }

// WrapAccountTransaction finalizes a dividend or tax refund. It fails with ErrIncompleteItem when
// no amount was found.
func WrapAccountTransaction(a *AccountTransaction, ctx *Context) (*Item, error) {
	return wrapRequired(a, ctx)
}

// WrapNonZero finalizes b, or discards it when it has no currency or a zero amount.
func WrapNonZero[T Builder](b T, ctx *Context) (*Item, error) {
	if b.Currency() == "" || b.Amount().IsZero() {
		ctx.Logger().Debug("discarding empty transaction", "kind", b.Kind())
		return nil, nil
	}
	return b.build(ctx), nil
}

func wrapRequired[T Builder](b T, ctx *Context) (*Item, error) {
	if b.Currency() == "" {
		return nil, fmt.Errorf("%w: %s has no currency", ErrIncompleteItem, b.Kind())
	}
	if b.Amount().IsZero() {
		return nil, fmt.Errorf("%w: %s has no amount", ErrIncompleteItem, b.Kind())
	}
	return b.build(ctx), nil
}
