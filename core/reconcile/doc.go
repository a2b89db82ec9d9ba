// Package reconcile merges attendance observations from many spreadsheets into one
// canonical count per person.
//
// Identity is keyed by email. Rows that carry no email are resolved through a
// normalized-name index populated while email-bearing rows are processed, or given a
// deterministic synthetic email when no binding exists.
//
// # Architecture
//
// The package consists of three parts:
//
// 1. State: the two shared stores of a run. Registry maps email to the aggregated
// Identity and NameIndex maps normalized names to emails. Each mutation is a single
// critical section, so workers never race on read-modify-write.
//
// 2. Engine: runs the email pass over every input, waits for all of it, then runs the
// name-only pass. Each pass is a bounded errgroup; per-file errors and panics are
// recorded in the run instead of aborting it.
//
// 3. Processor: the per-file adapter. The engine knows nothing about workbooks; see
// feature/roster for the spreadsheet-backed implementation.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(roster.NewProcessor(logger), cfg.Reconcile, logger)
//	run, err := engine.ProcessFiles(ctx, inputs)
//	summary := run.Summary()
package reconcile
