package analytics

import (
	"encoding/json"
	"sort"
)

// CountedValue marshals as a two-element [value, count] JSON array.
// Dashboards consume peak-day and top-reason selections in that shape.
type CountedValue struct {
	Value string
	Count int
}

func (c CountedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{c.Value, c.Count})
}

// argmax returns the highest-count key and its count. Keys are visited in
// sorted order, so ties resolve to the lexicographically smallest key. The
// third return is false when the map is empty.
func argmax(counts map[string]int) (string, int, bool) {
	best, bestN, found := "", 0, false
	for _, k := range sortedKeys(counts) {
		if !found || counts[k] > bestN {
			best, bestN, found = k, counts[k], true
		}
	}
	return best, bestN, found
}

// argmin is the mirror of argmax: lowest count wins, ties resolve to the
// lexicographically smallest key.
func argmin(counts map[string]int) (string, int, bool) {
	best, bestN, found := "", 0, false
	for _, k := range sortedKeys(counts) {
		if !found || counts[k] < bestN {
			best, bestN, found = k, counts[k], true
		}
	}
	return best, bestN, found
}

// topCounted returns up to n entries ordered by count descending, ties
// broken by ascending value.
func topCounted(counts map[string]int, n int) []CountedValue {
	out := make([]CountedValue, 0, len(counts))
	for _, k := range sortedKeys(counts) {
		out = append(out, CountedValue{Value: k, Count: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
