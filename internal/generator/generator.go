package generator

import "context"

// ProgressFunc is invoked before each item of a batch is requested, with a
// 1-based index. Used by the transport to update a "generating N of M"
// indicator; nil is allowed.
type ProgressFunc func(index, total int)

// Generator produces n short posts for one assembled prompt. The returned
// slice preserves request order; failed items are omitted. When every item
// fails, the result is a single fallback notice rather than an error, so
// callers always receive displayable output. An error is returned only for
// pre-flight conditions (missing credentials).
type Generator interface {
	Generate(ctx context.Context, prompt string, n int, onProgress ProgressFunc) ([]string, error)
}

// FallbackNotice is the degraded-success result for an all-failed batch.
const FallbackNotice = "Sorry, could not generate tweets at this time."
