// Package roster reconciles attendance workbooks into one ranked roster.
//
// Each sheet is inspected on its own: the header row is located among the first
// rows, then the name and email columns are identified by header text, falling
// back to sniffing the cells below the header for email-shaped values. Rows are
// folded into the shared reconcile.State according to the pass being run.
//
// # Components
//
//   - Normalizer: header and name normalization, email validation and synthetic
//     emails (normalize.go).
//   - Schema detection: DetectSchema (schema.go).
//   - Sheet reconciliation: ReconcileSheet (sheet.go).
//   - Processor: the reconcile.Processor that opens xlsx workbooks.
//   - Inputs: local folders, object storage prefixes and uploads (source.go).
//   - Report: ranking and the styled xlsx report (report.go).
//   - History: RunStore persists runs with GORM; RunCache fronts it.
//
// # HTTP
//
//	POST /roster/reconcile   multipart "files", ?format=xlsx, ?persist=true
//	GET  /roster/runs        ?limit=20
//	GET  /roster/runs/:id
package roster
