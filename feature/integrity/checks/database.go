package checks

import (
	"fmt"
	"reflect"
	"strings"

	"attendance-reconciler/core/database"
	"attendance-reconciler/feature/roster/models"

	"gorm.io/gorm"
)

// DatabaseReport strictly types the result of a history schema check.
type DatabaseReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckDatabase verifies the run history tables using the GORM models as the source of truth.
func CheckDatabase(db *gorm.DB) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
		Matched: true,
	}

	for _, model := range models.All() {
		tabler, ok := model.(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", model)
		}
		tableName := tabler.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}
		tblReport := compareColumns(reflect.TypeOf(model), actualCols)
		if tblReport.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tblReport
	}

	return report, nil
}

func compareColumns(t reflect.Type, actualCols []database.ColumnInfo) TableReport {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	tblReport := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < t.NumField(); i++ {
		gormTag := t.Field(i).Tag.Get("gorm")
		colName := parseGormTag(gormTag, "column")
		if colName == "" {
			// associations carry no column
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			tblReport.MissingColumns = append(tblReport.MissingColumns, colName)
			tblReport.Status = "error"
			continue
		}

		// Only columns with an explicit type are compared.
		expType := strings.ToLower(parseGormTag(gormTag, "type"))
		if expType != "" && !strings.Contains(actCol.Type, expType) {
			mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
			tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
			tblReport.Status = "error"
		}
	}
	return tblReport
}

func parseGormTag(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key+":") {
			return strings.TrimPrefix(p, key+":")
		}
	}
	return ""
}
