package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CategoryAmount is one entry of a CategoryBreakdown.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryBreakdown maps category to monthly amount, keeping the order in
// which categories first received a contribution.
type CategoryBreakdown []CategoryAmount

// Get returns the amount for category and whether it is present.
func (b CategoryBreakdown) Get(category string) (decimal.Decimal, bool) {
	for _, e := range b {
		if e.Category == category {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

// add accumulates amount under category, appending new categories.
func (b CategoryBreakdown) add(category string, amount decimal.Decimal) CategoryBreakdown {
	for i := range b {
		if b[i].Category == category {
			b[i].Amount = b[i].Amount.Add(amount)
			return b
		}
	}
	return append(b, CategoryAmount{Category: category, Amount: amount})
}

// Max returns the largest entry. Ties go to the earliest entry.
func (b CategoryBreakdown) Max() (CategoryAmount, bool) {
	if len(b) == 0 {
		return CategoryAmount{}, false
	}
	best := b[0]
	for _, e := range b[1:] {
		if e.Amount.GreaterThan(best.Amount) {
			best = e
		}
	}
	return best, true
}

// MarshalJSON encodes the breakdown as an object in insertion order.
func (b CategoryBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Category)
		if err != nil {
			return nil, err
		}
		val, err := e.Amount.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object into the breakdown, keeping key order.
func (b *CategoryBreakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("category breakdown: want object, got %v", tok)
	}

	out := CategoryBreakdown{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("category breakdown: bad key %v", tok)
		}
		var amount decimal.Decimal
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("category breakdown %q: %w", key, err)
		}
		out = append(out, CategoryAmount{Category: key, Amount: amount})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}
