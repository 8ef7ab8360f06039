package batch

import (
	"sort"

	"github.com/ssargent/marcdb/pkg/codec"
)

// FieldCount is one entry of a FieldCounts report
type FieldCount struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// FieldCounts tallies, per flattened key, how many records contain it.
// It is not safe for concurrent use; give each goroutine its own and Merge.
type FieldCounts struct {
	counts map[string]int
}

// NewFieldCounts returns an empty accumulator
func NewFieldCounts() *FieldCounts {
	return &FieldCounts{counts: make(map[string]int)}
}

// Observe counts every flattened key of rec once
func (c *FieldCounts) Observe(rec *codec.Record) {
	for key := range Flatten(rec) {
		c.Add(key, 1)
	}
}

// Add increments key by n
func (c *FieldCounts) Add(key string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[key] += n
}

// Get returns the count for key
func (c *FieldCounts) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys
func (c *FieldCounts) Len() int {
	return len(c.counts)
}

// Merge adds all counts from other
func (c *FieldCounts) Merge(other *FieldCounts) {
	if other == nil {
		return
	}
	for k, n := range other.counts {
		c.Add(k, n)
	}
}

// Sorted returns the counts ordered by key
func (c *FieldCounts) Sorted() []FieldCount {
	out := make([]FieldCount, 0, len(c.counts))
	for k, n := range c.counts {
		out = append(out, FieldCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
