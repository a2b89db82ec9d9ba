// Package database handles MySQL connections and schema inspection.
//
// Connect wraps GORM with the pool settings and timeouts used across the
// application. The connection is optional: commands that do not persist runs work
// without it.
//
// # Schema Inspection
//
// GetTableColumns reads a table's live columns so the integrity
// check can compare them with the run-history models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "attendance_runs")
package database
