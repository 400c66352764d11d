package statement

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedDocument is returned when no extractor or document type accepts the text.
	ErrUnrecognizedDocument = errors.New("unrecognized document")
	// ErrMandatorySectionUnmatched is returned when a required section did not match inside a block.
	ErrMandatorySectionUnmatched = errors.New("mandatory section unmatched")
	// ErrIncompleteItem is returned by wrap functions when a block never received an amount.
	ErrIncompleteItem = errors.New("incomplete transaction")
	// ErrInvalidNumericLiteral is returned for malformed amounts, shares and rates.
	ErrInvalidNumericLiteral = errors.New("invalid numeric literal")
	// ErrInvalidCurrencyCode is returned for codes that are not ISO 4217.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	// ErrMissingExchangeRate is returned when an amount must be converted but no rate was found.
	ErrMissingExchangeRate = errors.New("missing exchange rate")
	// ErrConflictingTaxEntry reports the same tax booked twice with different amounts.
	ErrConflictingTaxEntry = errors.New("conflicting tax entry")
	// ErrConflictingFeeEntry reports the same fee booked twice with different amounts.
	ErrConflictingFeeEntry = errors.New("conflicting fee entry")
)

// BlockError describes why one block occurrence contributed no item.
type BlockError struct {
	DocumentType string // name of the document type owning the block
	Line         int    // 1-based line number of the block start in the document
	Section      string // failing section, empty when the wrap step failed
	Err          error
}

func (e *BlockError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("%s block at line %d: %v", e.DocumentType, e.Line, e.Err)
	}
	return fmt.Sprintf("%s block at line %d: section %q: %v", e.DocumentType, e.Line, e.Section, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }
