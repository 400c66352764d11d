// Package statement extracts financial transactions from the plain text of bank and broker
// statements.
//
// Extraction is rule based and line oriented. An Extractor groups the rules of one institution:
//   - DocumentType classifies a document by a signature pattern matched against its whole text.
//   - Block segments the lines into spans starting at a marker line.
//   - Transaction runs an ordered list of Section over each span. A section matches consecutive
//     lines with regular expressions and assigns the named captures to a Builder.
//   - Context carries flags and derived values (an exchange rate, a refund marker) between the
//     sections and blocks of one document type.
//
// A block run ends with a wrap step turning the builder into zero or one Item. Items keep exact
// decimal amounts and their currency.
//
// Rules are either written in Go (see package sbroker) or loaded from YAML files (see package
// rules). The stx command line tool runs them against text files.
package statement
