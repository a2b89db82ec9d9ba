// Package integrity validates the infrastructure the attendance reconciler
// depends on.
//
// # Checks Provided
//
//   - Storage: the bucket exists, the input and report prefixes are present and
//     the input prefix holds .xlsx workbooks.
//   - Database: the run history tables match the roster models (columns, types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/database : Runs the database schema check.
package integrity
