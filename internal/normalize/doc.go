// Package normalize turns heterogeneous remote job and backend handles into
// canonical records with a fixed schema.
//
// The failure policy has two tiers. A facet that errors degrades to its
// documented default ("Unknown", empty slice, empty map, nil error message)
// without affecting sibling facets. A handle that panics degrades the whole
// record to a sentinel whose identity fields read "Error". Partial data is
// always preferred over no data; normalization itself never fails.
package normalize
