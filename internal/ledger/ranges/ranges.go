// Package ranges tracks which validated ledgers a node holds and answers
// whether a span of ledger versions is complete.
package ranges

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LedgerRange represents an inclusive range of ledger versions
type LedgerRange struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Contains checks if a ledger version is within this range
func (r LedgerRange) Contains(seq uint32) bool {
	return seq >= r.Start && seq <= r.End
}

// String returns a string representation of the range
func (r LedgerRange) String() string {
	if r.Start == r.End {
		return strconv.FormatUint(uint64(r.Start), 10)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// CompleteLedgerSet is a sorted list of non-overlapping, non-adjacent ranges
type CompleteLedgerSet struct {
	ranges []LedgerRange
}

// NewCompleteLedgerSet creates an empty set
func NewCompleteLedgerSet() *CompleteLedgerSet {
	return &CompleteLedgerSet{}
}

// Parse reads the complete_ledgers format reported by server_info,
// e.g. "32570-6595042,6595044-6600000". "empty" and "" yield an empty set.
func Parse(s string) (*CompleteLedgerSet, error) {
	set := NewCompleteLedgerSet()
	s = strings.TrimSpace(s)
	if s == "" || s == "empty" {
		return set, nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		start, err := strconv.ParseUint(lo, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid ledger range %q: %w", part, err)
		}
		if !isRange {
			set.Add(uint32(start))
			continue
		}
		end, err := strconv.ParseUint(hi, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid ledger range %q: %w", part, err)
		}
		if start > end {
			return nil, fmt.Errorf("invalid ledger range %q: start after end", part)
		}
		set.AddRange(uint32(start), uint32(end))
	}
	return set, nil
}

// Add marks a single ledger version as held
func (c *CompleteLedgerSet) Add(seq uint32) {
	c.AddRange(seq, seq)
}

// AddRange marks a range of ledger versions as held
func (c *CompleteLedgerSet) AddRange(start, end uint32) {
	if start > end {
		return
	}
	c.ranges = mergeRange(c.ranges, LedgerRange{Start: start, End: end})
}

// Contains checks if a ledger version is held
func (c *CompleteLedgerSet) Contains(seq uint32) bool {
	idx := c.search(seq)
	return idx < len(c.ranges) && c.ranges[idx].Contains(seq)
}

// ContainsRange reports whether every ledger in [start, end] is held.
// Ranges are kept merged, so a complete span lies inside a single range.
func (c *CompleteLedgerSet) ContainsRange(start, end uint32) bool {
	if start > end {
		return false
	}
	idx := c.search(start)
	return idx < len(c.ranges) && c.ranges[idx].Contains(start) && c.ranges[idx].End >= end
}

// Range returns the overall min and max ledger versions, and whether any exist
func (c *CompleteLedgerSet) Range() (min, max uint32, hasAny bool) {
	if len(c.ranges) == 0 {
		return 0, 0, false
	}
	return c.ranges[0].Start, c.ranges[len(c.ranges)-1].End, true
}

// Gaps returns the missing ranges inside [start, end]
func (c *CompleteLedgerSet) Gaps(start, end uint32) []LedgerRange {
	if start > end {
		return nil
	}

	var gaps []LedgerRange
	current := uint64(start)
	for _, r := range c.ranges {
		if r.End < start {
			continue
		}
		if r.Start > end {
			break
		}
		if uint64(r.Start) > current {
			gaps = append(gaps, LedgerRange{Start: uint32(current), End: r.Start - 1})
		}
		if uint64(r.End)+1 > current {
			current = uint64(r.End) + 1
		}
	}
	if current <= uint64(end) {
		gaps = append(gaps, LedgerRange{Start: uint32(current), End: end})
	}
	return gaps
}

// Ranges returns a copy of the held ranges
func (c *CompleteLedgerSet) Ranges() []LedgerRange {
	return append([]LedgerRange(nil), c.ranges...)
}

// String returns the complete_ledgers representation of the set
func (c *CompleteLedgerSet) String() string {
	if len(c.ranges) == 0 {
		return "empty"
	}

	parts := make([]string, len(c.ranges))
	for i, r := range c.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// search returns the index of the first range ending at or after seq
func (c *CompleteLedgerSet) search(seq uint32) int {
	return sort.Search(len(c.ranges), func(i int) bool {
		return c.ranges[i].End >= seq
	})
}

// mergeRange inserts r into the sorted list, merging overlapping or adjacent ranges
func mergeRange(ranges []LedgerRange, r LedgerRange) []LedgerRange {
	result := make([]LedgerRange, 0, len(ranges)+1)
	i := 0

	for ; i < len(ranges) && uint64(ranges[i].End)+1 < uint64(r.Start); i++ {
		result = append(result, ranges[i])
	}
	for ; i < len(ranges) && uint64(ranges[i].Start) <= uint64(r.End)+1; i++ {
		r.Start = min(r.Start, ranges[i].Start)
		r.End = max(r.End, ranges[i].End)
	}
	result = append(result, r)
	return append(result, ranges[i:]...)
}
