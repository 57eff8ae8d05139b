package models

import (
	"time"

	"gorm.io/gorm"
)

// UsageEvent is one tracked script fetch.
type UsageEvent struct {
	gorm.Model

	ScriptID  string    `json:"scriptId" gorm:"index"`
	UserID    string    `json:"userId" gorm:"index"`
	Version   string    `json:"version"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}
