package statement

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Registry dispatches documents to the extractors recognizing them.
type Registry struct {
	extractors []*Extractor
}

// NewRegistry returns a registry with the given extractors.
func NewRegistry(extractors ...*Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// Register appends extractors.
func (r *Registry) Register(extractors ...*Extractor) { r.extractors = append(r.extractors, extractors...) }

// Extractors returns the registered extractors.
func (r *Registry) Extractors() []*Extractor { return r.extractors }

// Extract runs every extractor recognizing doc and concatenates their results.
func (r *Registry) Extract(doc *RawDocument) (*Result, error) {
	res := &Result{Source: doc.Source()}
	found := false
	var errs []error
	for _, e := range r.extractors {
		if !e.Recognizes(doc) {
			continue
		}
		sub, err := e.Extract(doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found = true
		res.Items = append(res.Items, sub.Items...)
		res.Failures = append(res.Failures, sub.Failures...)
	}
	if !found {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, fmt.Errorf("%s: %w", doc.Source(), ErrUnrecognizedDocument)
	}
	return res, nil
}

// ExtractAll extracts docs in parallel with at most workers goroutines (unbounded when workers is
// not positive). Results are in the order of docs. Document errors are reported in Result.Err,
// the returned error is only set when ctx is done.
func (r *Registry) ExtractAll(ctx context.Context, docs []*RawDocument, workers int) ([]*Result, error) {
	results := make([]*Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Extract(doc)
			if err != nil {
				res = &Result{Source: doc.Source(), Err: err}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
