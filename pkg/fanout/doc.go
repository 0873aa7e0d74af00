// Package fanout runs one task per input item concurrently and joins the
// results in submission order.
//
// Join semantics are all-or-nothing: the first task error cancels the shared
// context and is returned, and no partial results are handed back.
//
// Example usage:
//
//	records, err := fanout.Gather(ctx, refs, fanout.DefaultConfig(),
//		func(ctx context.Context, _ int, ref pokeapi.Reference) (pokeapi.Record, error) {
//			return svc.FetchRecord(ctx, ref)
//		})
//
// Concurrency is unbounded by default; the shared HTTP transport's pool is
// the only limit. Set Config.MaxConcurrency to cap in-flight tasks.
package fanout
