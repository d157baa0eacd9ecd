// Package analytics holds the reducers that turn normalized job and backend
// records into the analytic views served over HTTP.
//
// Every reducer is a pure function over its input slice: no reducer mutates
// records, touches the network or reads the clock (views that carry a
// timestamp take it as an argument). Argmax selections iterate candidates
// in sorted order, so equal counts resolve to the lexicographically
// smallest key and repeated runs over the same input produce identical
// output.
package analytics
