// Package budget tracks a shared request budget against a rate-limited API
// and turns it into admission decisions.
//
// The tracker keeps a rolling window (consumed count, window end) and makes
// a three-way call on every admission: below the throttle threshold,
// requests go straight through; between the threshold and capacity they are
// paced so the rest of the budget spreads over the rest of the window; at
// capacity the caller is told to wait until the window resets. Slowing down
// before the limit, rather than only after a 429, keeps latency smooth
// instead of saw-toothed.
//
// Server-reported usage always wins over local counting: the remote budget
// may be shared by processes this tracker cannot see, so Record replaces
// the local estimate whenever a response carries usage headers, and a 429's
// retry-after overrides the computed window end entirely.
package budget
