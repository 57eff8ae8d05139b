package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Email    string    `json:"email" gorm:"uniqueIndex"`
	Tier     string    `json:"tier"`
	Status   string    `json:"status"`
	Requests int64     `json:"requests"`
	JoinedAt time.Time `json:"joined"`
}

// Setting is one per-owner preference.
type Setting struct {
	gorm.Model

	Owner string `json:"-" gorm:"uniqueIndex:idx_owner_key"`
	Key   string `json:"key" gorm:"uniqueIndex:idx_owner_key"`
	Value string `json:"value"`
}
