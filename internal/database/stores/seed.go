package stores

import (
	"context"
	"time"

	"github.com/pynezz/scriptshield/internal/database/models"
	"github.com/pynezz/scriptshield/internal/util"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func minute(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return t
}

func seedUsers() []models.User {
	return []models.User{
		{Email: "admin@example.com", Tier: "enterprise", Status: "active", JoinedAt: day("2024-01-15"), Requests: 12457},
		{Email: "user@company.com", Tier: "premium", Status: "active", JoinedAt: day("2024-02-01"), Requests: 8456},
		{Email: "dev@startup.io", Tier: "basic", Status: "suspended", JoinedAt: day("2024-01-20"), Requests: 124},
		{Email: "security@corp.com", Tier: "enterprise", Status: "active", JoinedAt: day("2024-01-10"), Requests: 25684},
		{Email: "test@domain.com", Tier: "free", Status: "active", JoinedAt: day("2024-02-15"), Requests: 42},
	}
}

func seedKeys() []models.APIKey {
	used := func(s string) *time.Time {
		t := day(s)
		return &t
	}
	keys := []models.APIKey{
		{Name: "Production", Prefix: "sk_live_", Masked: "sk_live_************1234", RateLimit: "10k/day", LastUsed: used("2024-02-20")},
		{Name: "Staging", Prefix: "sk_test_", Masked: "sk_test_************5678", RateLimit: "1k/day", LastUsed: used("2024-02-19")},
		{Name: "Development", Prefix: "sk_dev_", Masked: "sk_dev_************9012", RateLimit: "100/day", LastUsed: used("2024-02-20")},
	}
	created := []string{"2024-01-15", "2024-02-01", "2024-02-10"}
	for i := range keys {
		keys[i].Owner = SeedOwner
		keys[i].Permissions = "script_access,analytics"
		keys[i].CreatedAt = day(created[i])
	}
	return keys
}

func seedEvents() []models.SecurityEvent {
	return []models.SecurityEvent{
		{Type: "threat", Severity: "high", Description: "Brute force attack detected", IP: "192.168.1.100", OccurredAt: minute("2024-02-20 14:30")},
		{Type: "warning", Severity: "medium", Description: "Multiple failed auth attempts", IP: "10.0.0.50", OccurredAt: minute("2024-02-20 12:15")},
		{Type: "info", Severity: "low", Description: "API key rotation", IP: "172.16.0.10", OccurredAt: minute("2024-02-20 10:00")},
		{Type: "threat", Severity: "critical", Description: "DDoS attempt blocked", IP: "203.0.113.5", OccurredAt: minute("2024-02-19 22:45")},
	}
}

// Seed inserts the demo users, keys and events. It does nothing when users
// already exist, so it is safe to call on every start.
func (s *Stores) Seed(ctx context.Context) error {
	count, err := s.UserStore.WithContext(ctx).Count()
	if err != nil {
		return err
	}
	if count > 0 {
		util.PrintDebug("database already seeded")
		return nil
	}

	util.PrintInfo("Seeding demo data...")
	if _, err := s.UserStore.WithContext(ctx).InsertBatch(seedUsers()); err != nil {
		return err
	}
	if _, err := s.KeyStore.WithContext(ctx).InsertBatch(seedKeys()); err != nil {
		return err
	}
	if _, err := s.EventStore.WithContext(ctx).InsertBatch(seedEvents()); err != nil {
		return err
	}
	util.PrintSuccess("seeded demo data")
	return nil
}
