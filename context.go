package statement

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
)

// Well known context keys.
const (
	// KeyNegative flags a block that reports a tax refund: tax sections must not book taxes.
	KeyNegative = "negative"
	// KeyExchangeRate holds the rate printed in the current block.
	KeyExchangeRate = "exchangeRate"
	// KeyExchangeBase and KeyExchangeTerm hold the currency pair of KeyExchangeRate, when printed.
	KeyExchangeBase = "exchangeRate.base"
	KeyExchangeTerm = "exchangeRate.term"
)

// Context is the mutable store shared by all sections and blocks of a document type while it
// processes one document.
//
// A Context is created for each document type attempt and dropped afterwards. It is not safe for
// concurrent use, and never needs to be.
type Context struct {
	values map[string]string
	policy ConflictPolicy
	logger *log.Logger
}

// NewContext returns an empty context using the given conflict policy for tax and fee bookings.
func NewContext(policy ConflictPolicy) *Context {
	return &Context{values: make(map[string]string), policy: policy, logger: discardLogger}
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is set.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Put stores value under key, replacing any previous value.
func (c *Context) Put(key, value string) { c.values[key] = value }

// Remove deletes key. Removing a missing key is a no-op.
func (c *Context) Remove(key string) { delete(c.values, key) }

// PutDecimal stores d in its plain string form.
func (c *Context) PutDecimal(key string, d decimal.Decimal) { c.values[key] = d.String() }

// Decimal reads back a value stored with PutDecimal.
func (c *Context) Decimal(key string) (decimal.Decimal, bool) {
	v, ok := c.values[key]
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Keys returns the sorted list of keys currently set.
func (c *Context) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// ConflictPolicy returns how conflicting tax or fee entries are resolved.
func (c *Context) ConflictPolicy() ConflictPolicy { return c.policy }

// Logger returns the logger of the running extractor.
func (c *Context) Logger() *log.Logger { return c.logger }
