// Package rules loads extractors described in YAML files.
//
// A rule file describes one institution:
//
//	label: Example Bank
//	bank_identifiers: ["Example Bank AG"]
//	document_types:
//	  - name: buy/sell
//	    signature: "Kauf|Verkauf"
//	    blocks:
//	      - start: "^(Kauf|Verkauf)$"
//	        transaction: buy
//	        clear_flags: [negative]
//	        sections:
//	          - name: type
//	            optional: true
//	            patterns: ['(?P<type>Kauf|Verkauf)']
//	            kind: {Verkauf: sell}
//	          - name: amount
//	            patterns: ['Betrag (?P<amount>[.,\d]+)-? (?P<currency>\w{3})']
//	            fields: [amount, currency]
//
// Patterns match whole lines and use named groups. The groups read by each field are listed in
// Fields.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/etnz/statement"
	"gopkg.in/yaml.v3"
)

// Fields and the named groups they read.
var Fields = map[string][]string{
	"security":      {"name", "isin", "wkn"},
	"shares":        {"shares"},
	"date":          {"date", "time"},
	"amount":        {"amount"},
	"currency":      {"currency"},
	"exchange_rate": {"exchangeRate"}, // optional "base" and "term" groups give the currency pair
}

// File is the content of a rule file.
type File struct {
	Label           string         `yaml:"label"`
	BankIdentifiers []string       `yaml:"bank_identifiers"`
	DocumentTypes   []DocumentType `yaml:"document_types"`

	path string
}

// DocumentType describes a statement.DocumentType.
type DocumentType struct {
	Name      string  `yaml:"name"`
	Signature string  `yaml:"signature"`
	Blocks    []Block `yaml:"blocks"`
}

// Block describes a statement.Block and its transaction.
type Block struct {
	Start       string    `yaml:"start"`
	End         string    `yaml:"end,omitempty"`
	MaxLines    int       `yaml:"max_lines,omitempty"`
	Transaction string    `yaml:"transaction"` // buy, sell, dividend or tax-refund
	DiscardZero bool      `yaml:"discard_zero,omitempty"`
	ClearFlags  []string  `yaml:"clear_flags,omitempty"` // flags of other blocks lowered at the start of each occurrence
	Sections    []Section `yaml:"sections"`
}

// Section describes a statement.Section.
type Section struct {
	Name       string            `yaml:"name,omitempty"`
	Optional   bool              `yaml:"optional,omitempty"`
	Patterns   []string          `yaml:"patterns"`
	Fields     []string          `yaml:"fields,omitempty"`
	Kind       map[string]string `yaml:"kind,omitempty"` // "type" capture to transaction kind
	Tax        string            `yaml:"tax,omitempty"`  // books the "tax" and "currency" captures
	Fee        string            `yaml:"fee,omitempty"`  // books the "fee" and "currency" captures
	SetFlag    string            `yaml:"set_flag,omitempty"`
	UnlessFlag string            `yaml:"unless_flag,omitempty"` // the section does nothing while the flag is set
}

// Load reads and validates a rule file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read rules: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.path = path
	return f, nil
}

// Parse decodes and validates rules. Unknown keys are errors.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Path returns the file the rules were loaded from, if any.
func (f *File) Path() string { return f.path }

// Validate reports every problem of the rules at once.
func (f *File) Validate() error {
	var errs []error
	if f.Label == "" {
		errs = append(errs, errors.New("label is required"))
	}
	if len(f.BankIdentifiers) == 0 {
		errs = append(errs, errors.New("at least one bank identifier is required"))
	}
	if len(f.DocumentTypes) == 0 {
		errs = append(errs, errors.New("at least one document type is required"))
	}
	for i, dt := range f.DocumentTypes {
		where := fmt.Sprintf("document_types[%d]", i)
		if dt.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", where))
		}
		if _, err := regexp.Compile(dt.Signature); err != nil || dt.Signature == "" {
			errs = append(errs, fmt.Errorf("%s: invalid signature %q", where, dt.Signature))
		}
		if len(dt.Blocks) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one block is required", where))
		}
		for j, b := range dt.Blocks {
			errs = append(errs, b.validate(fmt.Sprintf("%s.blocks[%d]", where, j))...)
		}
	}
	return errors.Join(errs...)
}

func (b Block) validate(where string) []error {
	var errs []error
	if _, err := regexp.Compile(b.Start); err != nil || b.Start == "" {
		errs = append(errs, fmt.Errorf("%s: invalid start %q", where, b.Start))
	}
	if _, err := regexp.Compile(b.End); err != nil {
		errs = append(errs, fmt.Errorf("%s: invalid end %q", where, b.End))
	}
	if b.MaxLines < 0 {
		errs = append(errs, fmt.Errorf("%s: max_lines must not be negative", where))
	}
	tx, ok := statement.ParseKind(b.Transaction)
	if !ok {
		errs = append(errs, fmt.Errorf("%s: unknown transaction %q, want buy, sell, dividend or tax-refund", where, b.Transaction))
	}
	if len(b.Sections) == 0 {
		errs = append(errs, fmt.Errorf("%s: at least one section is required", where))
	}
	for k, s := range b.Sections {
		at := fmt.Sprintf("%s.sections[%d]", where, k)
		errs = append(errs, s.validate(at)...)
		if !ok {
			continue
		}
		for capture, name := range s.Kind {
			if kind, known := statement.ParseKind(name); known && isTrade(kind) != isTrade(tx) {
				errs = append(errs, fmt.Errorf("%s: %q maps to %s in a %s block", at, capture, kind, tx))
			}
		}
	}
	return errs
}

// isTrade tells the kinds of a buy/sell entry from those of an account transaction.
func isTrade(k statement.Kind) bool { return k == statement.Buy || k == statement.Sell }

func (s Section) validate(where string) []error {
	if s.Name != "" {
		where = fmt.Sprintf("%s (%s)", where, s.Name)
	}
	var errs []error
	if len(s.Patterns) == 0 {
		errs = append(errs, fmt.Errorf("%s: at least one pattern is required", where))
	}
	groups := make(map[string]bool)
	for _, p := range s.Patterns {
		re, err := statement.CompileLinePattern(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
			continue
		}
		for _, name := range re.SubexpNames() {
			groups[name] = true
		}
	}
	need := func(what string, names ...string) {
		if !slices.ContainsFunc(names, func(n string) bool { return groups[n] }) {
			errs = append(errs, fmt.Errorf("%s: %s needs a (?P<%s>...) group", where, what, names[0]))
		}
	}
	for _, field := range s.Fields {
		names, ok := Fields[field]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown field %q", where, field))
			continue
		}
		need(field, names...)
	}
	for capture, kind := range s.Kind {
		if _, ok := statement.ParseKind(kind); !ok {
			errs = append(errs, fmt.Errorf("%s: %q maps to unknown kind %q", where, capture, kind))
		}
	}
	if len(s.Kind) > 0 {
		need("kind", "type")
	}
	if s.Tax != "" {
		need("tax", "tax")
		need("tax", "currency")
	}
	if s.Fee != "" {
		need("fee", "fee")
		need("fee", "currency")
	}
	if s.Tax != "" && s.Fee != "" {
		errs = append(errs, fmt.Errorf("%s: a section books either a tax or a fee", where))
	}
	return errs
}
