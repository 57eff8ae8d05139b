package models

func GetModels() []interface{} {
	return []interface{}{
		&UsageEvent{},
		&APIKey{},
		&SecurityEvent{},
		&User{},
		&Setting{},
	}
}

// Table names, for store naming and raw counts.
const (
	USAGE_EVENTS    = "usage_events"
	API_KEYS        = "api_keys"
	SECURITY_EVENTS = "security_events"
	USERS           = "users"
	SETTINGS        = "settings"
)
