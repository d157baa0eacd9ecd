// Package api serves the REST surface: the normalized job views, the ten
// analytic endpoints, the registry utilities and the Prometheus metrics.
// Unknown users get a 404, upstream failures a 500 with the failure text;
// the cross-user view is the one exception, embedding per-user errors
// instead of failing the whole response.
package api
