// Package models defines the GORM models for persisted attendance runs.
//
// A Run row holds the summary of one reconciliation; its Appearance rows hold the
// ranked roster. Both are checked by the database integrity check.
package models
