// Package utils provides common utility functions for the attendance reconciler.
// It holds the small string predicates shared by the identity store and the sheet
// reconciler.
package utils
