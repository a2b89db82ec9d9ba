package models

import "time"

// Run is one persisted reconciliation run.
type Run struct {
	ID             string       `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Source         string       `gorm:"column:source;type:varchar(255)" json:"source"`
	StartedAt      time.Time    `gorm:"column:started_at" json:"started_at"`
	DurationMillis int64        `gorm:"column:duration_ms" json:"duration_ms"`
	Files          int          `gorm:"column:files" json:"files"`
	FilesProcessed int          `gorm:"column:files_processed" json:"files_processed"`
	RowsProcessed  int          `gorm:"column:rows_processed" json:"rows_processed"`
	Failures       int          `gorm:"column:failures" json:"failures"`
	Identities     int          `gorm:"column:identities" json:"identities"`
	Bindings       int          `gorm:"column:bindings" json:"bindings"`
	Appearances    []Appearance `gorm:"foreignKey:RunID;references:ID" json:"appearances,omitempty"`
}

func (Run) TableName() string {
	return "attendance_runs"
}

// Appearance is one ranked person within a run.
type Appearance struct {
	ID       uint   `gorm:"primaryKey;column:id" json:"-"`
	RunID    string `gorm:"column:run_id;type:varchar(36);index" json:"-"`
	Position int    `gorm:"column:position" json:"rank"`
	Name     string `gorm:"column:name;type:varchar(255)" json:"name"`
	Email    string `gorm:"column:email;type:varchar(320);index" json:"email"`
	Count    int    `gorm:"column:count" json:"count"`
}

func (Appearance) TableName() string {
	return "attendance_appearances"
}

// All returns every model owned by the roster feature, in migration order.
func All() []any {
	return []any{&Run{}, &Appearance{}}
}
