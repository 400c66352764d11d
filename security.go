package statement

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// Security identifies the asset a transaction refers to.
type Security struct {
	id   uuid.UUID
	name string
	isin string
	wkn  string
}

// ID returns the identifier assigned by the resolver that created the security.
func (s Security) ID() uuid.UUID { return s.id }

// Name returns the security name as printed on the first statement that mentioned it.
func (s Security) Name() string { return s.name }

// ISIN returns the ISIN (ISO 6166) or an empty string.
func (s Security) ISIN() string { return s.isin }

// WKN returns the German securities identification number or an empty string.
func (s Security) WKN() string { return s.wkn }

// IsZero reports whether no security was ever set.
func (s Security) IsZero() bool { return s == Security{} }

// String returns the most specific identifier available.
func (s Security) String() string {
	switch {
	case s.isin != "":
		return s.isin
	case s.wkn != "":
		return s.wkn
	default:
		return s.name
	}
}

// MarshalJSON implements the json.Marshaler interface for Security.
func (s Security) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("name", s.name)
	w.Optional("isin", s.isin)
	w.Optional("wkn", s.wkn)
	return w.MarshalJSON()
}

// SecurityResolver maps the identifiers found in a statement to a canonical security.
type SecurityResolver interface {
	Resolve(name, isin, wkn string) (Security, error)
}

// Securities is an in-memory SecurityResolver. It is safe for concurrent use.
//
// Resolution is idempotent on the ISIN when there is a valid one, then on the WKN, then on the
// name. Unknown securities are created.
type Securities struct {
	mu     sync.Mutex
	byISIN map[string]Security
	byWKN  map[string]Security
	byName map[string]Security
	all    []Security
}

// NewSecurities returns an empty resolver.
func NewSecurities() *Securities {
	return &Securities{
		byISIN: make(map[string]Security),
		byWKN:  make(map[string]Security),
		byName: make(map[string]Security),
	}
}

// Resolve implements SecurityResolver.
func (s *Securities) Resolve(name, isin, wkn string) (Security, error) {
	name, isin, wkn = strings.TrimSpace(name), strings.TrimSpace(isin), strings.TrimSpace(wkn)
	if isin != "" && ValidateISIN(isin) != nil {
		// not an ISIN after all, it is still better than no name.
		if name == "" {
			name = isin
		}
		isin = ""
	}
	if name == "" && isin == "" && wkn == "" {
		return Security{}, errors.New("cannot resolve a security without name, isin or wkn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sec, ok := s.lookup(name, isin, wkn); ok {
		return sec, nil
	}
	sec := Security{id: uuid.New(), name: name, isin: isin, wkn: wkn}
	if isin != "" {
		s.byISIN[isin] = sec
	}
	if wkn != "" {
		s.byWKN[wkn] = sec
	}
	if name != "" {
		if _, exists := s.byName[name]; !exists {
			s.byName[name] = sec
		}
	}
	s.all = append(s.all, sec)
	return sec, nil
}

func (s *Securities) lookup(name, isin, wkn string) (Security, bool) {
	if isin != "" {
		sec, ok := s.byISIN[isin]
		// an ISIN is authoritative: do not fall back to a name shared by another ISIN.
		return sec, ok
	}
	if wkn != "" {
		if sec, ok := s.byWKN[wkn]; ok {
			return sec, true
		}
	}
	sec, ok := s.byName[name]
	return sec, ok && name != ""
}

// All returns the securities in creation order.
func (s *Securities) All() []Security {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all)
}

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// Apply a variation of the Luhn algorithm
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')
		if isSecond {
			digit *= 2
		}
		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit := int(isin[11] - '0')
	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}
	return nil
}
