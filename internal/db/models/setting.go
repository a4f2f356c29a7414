// Package models contains database model definitions.
package models

import "time"

// Setting is a named JSON document. Addon settings overrides are stored one
// row per addon, version, variant and scope target, see setting.Key.
type Setting struct {
	// ID is the unique identifier for the setting row.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique storage key.
	Name string `gorm:"unique;size:255;not null"`
	// Value is the raw JSON document.
	Value []byte
	// UpdatedAt is the timestamp of the last write (managed by GORM).
	UpdatedAt time.Time
}
