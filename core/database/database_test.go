package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		contains []string
	}{
		{
			name: "Defaults timeout",
			cfg:  Config{Host: "db", Port: 3306, User: "root", Name: "attendance"},
			contains: []string{
				"root:@tcp(db:3306)/attendance?",
				"timeout=10s",
				"readTimeout=10s",
				"parseTime=True",
			},
		},
		{
			name: "Encodes password",
			cfg:  Config{Host: "db", Port: 3307, User: "app", Password: "p@ss/word", Name: "rosters", TimeoutSeconds: 3},
			contains: []string{
				"app:p%40ss%2Fword@tcp(db:3307)/rosters?",
				"writeTimeout=3s",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := DSN(tt.cfg)
			for _, want := range tt.contains {
				assert.Contains(t, dsn, want)
			}
		})
	}
}

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "127.0.0.1",
			Port:           1, // nothing listens here
			User:           "root",
			Password:       "wrongpassword",
			Name:           "attendance",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
