// Package types provides type definitions for the data flowing through the job verification pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Category groups flags by the kind of evidence they represent
type Category string

// Flag categories
const (
	CategoryAcquisition  Category = "acquisition"
	CategoryContent      Category = "content"
	CategoryVerification Category = "verification"
	CategoryFinancial    Category = "financial"
	CategoryIntelligence Category = "intelligence"
)

// Categories returns the fixed flag categories in ledger order.
func Categories() []Category {
	return []Category{
		CategoryAcquisition,
		CategoryContent,
		CategoryVerification,
		CategoryFinancial,
		CategoryIntelligence,
	}
}

// Flags is an ordered, duplicate-free ledger of flag messages per category.
// The zero value is not usable; create one with NewFlags.
type Flags struct {
	order   []Category
	entries map[Category][]string
}

// NewFlags returns a ledger with the fixed categories present and empty.
func NewFlags() *Flags {
	f := &Flags{entries: make(map[Category][]string)}
	for _, c := range Categories() {
		f.order = append(f.order, c)
		f.entries[c] = []string{}
	}
	return f
}

// Add appends message to category unless it is already present.
// Unknown categories are created on first use. Returns true when the message was added.
func (f *Flags) Add(category Category, message string) bool {
	if message == "" {
		return false
	}
	existing, ok := f.entries[category]
	if !ok {
		f.order = append(f.order, category)
	}
	for _, m := range existing {
		if m == message {
			return false
		}
	}
	f.entries[category] = append(existing, message)
	return true
}

// Get returns the messages for a category in insertion order.
func (f *Flags) Get(category Category) []string {
	return f.entries[category]
}

// Count returns the number of messages recorded for a category.
func (f *Flags) Count(category Category) int {
	return len(f.entries[category])
}

// Total returns the number of messages across all categories.
func (f *Flags) Total() int {
	total := 0
	for _, msgs := range f.entries {
		total += len(msgs)
	}
	return total
}

// Categories returns every category present in the ledger, fixed ones first.
func (f *Flags) Categories() []Category {
	out := make([]Category, len(f.order))
	copy(out, f.order)
	return out
}

// Snapshot returns a deep copy of the ledger.
func (f *Flags) Snapshot() *Flags {
	cp := &Flags{
		order:   f.Categories(),
		entries: make(map[Category][]string, len(f.entries)),
	}
	for c, msgs := range f.entries {
		dup := make([]string, len(msgs))
		copy(dup, msgs)
		cp.entries[c] = dup
	}
	return cp
}

// MarshalJSON writes the ledger as an object keyed by category, preserving category order.
func (f *Flags) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range f.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(c))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.entries[c])
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

// UnmarshalJSON reads a category -> messages object. Fixed categories keep their order;
// extra categories follow in sorted key order since JSON objects carry no ordering.
func (f *Flags) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = *NewFlags()
	for _, c := range Categories() {
		for _, m := range raw[string(c)] {
			f.Add(c, m)
		}
		delete(raw, string(c))
	}
	extras := make([]string, 0, len(raw))
	for k := range raw {
		extras = append(extras, k)
	}
	slices.Sort(extras)
	for _, k := range extras {
		if _, ok := f.entries[Category(k)]; !ok {
			f.order = append(f.order, Category(k))
			f.entries[Category(k)] = []string{}
		}
		for _, m := range raw[k] {
			f.Add(Category(k), m)
		}
	}
	return nil
}
