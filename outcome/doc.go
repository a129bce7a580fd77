// Package outcome defines the closed result taxonomy shared by every layer
// above the transport, and the pure classification function that produces it.
//
// The taxonomy replaces both exception-style control flow and raw status
// codes: a caller receives exactly one of the Kind variants, with
// retryability derived from the kind rather than stored beside it. Classify
// is total (every transport result maps to exactly one Outcome) and pure,
// so classification is unit-testable without any network machinery.
package outcome
