package models

import (
	"time"

	"gorm.io/gorm"
)

type SecurityEvent struct {
	gorm.Model

	Type        string    `json:"type" gorm:"index"` // threat, warning or info
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	IP          string    `json:"ip"`
	RuleID      string    `json:"ruleId,omitempty"`
	Path        string    `json:"path,omitempty"`
	OccurredAt  time.Time `json:"time" gorm:"index"`
}
