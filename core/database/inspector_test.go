package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestGetTableColumns(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "BIGINT UNSIGNED", "NO", "PRI", nil, "auto_increment").
		AddRow("Email", "VARCHAR(320)", "NO", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `attendance_appearances`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "attendance_appearances")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "bigint unsigned", columns[0].Type)
	assert.Equal(t, "email", columns[1].Field)
	assert.Equal(t, "varchar(320)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableColumns_Error(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SHOW COLUMNS FROM `missing`").WillReturnError(assert.AnError)

	_, err := GetTableColumns(db, "missing")
	assert.ErrorContains(t, err, "failed to get columns for table missing")
}
