package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// APIKey is a generated key. Only the argon2 hash and a masked form are
// kept; the plain key is shown once at creation.
type APIKey struct {
	gorm.Model

	Owner       string     `json:"-" gorm:"index"`
	Name        string     `json:"name"`
	Prefix      string     `json:"prefix" gorm:"index"`
	Masked      string     `json:"key"`
	Hash        string     `json:"-"`
	Permissions string     `json:"-"`
	RateLimit   string     `json:"rateLimit"`
	LastUsed    *time.Time `json:"lastUsed"`
}

// PermissionList splits the stored comma separated permissions.
func (k APIKey) PermissionList() []string {
	if k.Permissions == "" {
		return []string{}
	}
	return strings.Split(k.Permissions, ",")
}
