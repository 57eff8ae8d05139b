package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pynezz/scriptshield/internal/database"
	"github.com/pynezz/scriptshield/internal/database/models"
	"github.com/pynezz/scriptshield/internal/threat"
	"github.com/pynezz/scriptshield/internal/util"
	"github.com/pynezz/scriptshield/internal/util/cryptoutils"
	"github.com/pynezz/scriptshield/pkg/model"
)

// Owner of the demo rows every caller can see.
const SeedOwner = ""

type Stores struct {
	db *gorm.DB

	UsageStore    *database.DataStore[models.UsageEvent]
	KeyStore      *database.DataStore[models.APIKey]
	EventStore    *database.DataStore[models.SecurityEvent]
	UserStore     *database.DataStore[models.User]
	SettingsStore *database.DataStore[models.Setting]

	now func() time.Time
}

// Open initializes the database described by cfg and every store on it.
func Open(cfg model.DatabaseConfig) (*Stores, error) {
	util.PrintInfo("Initializing stores...")

	db, err := database.InitDB(cfg.Path, gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}, models.GetModels()...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s, err := new(db)
	if err != nil {
		return nil, err
	}

	if cfg.Seed {
		if err := s.Seed(context.Background()); err != nil {
			return nil, fmt.Errorf("seed database: %w", err)
		}
	}

	util.PrintSuccess("initialized all stores")
	return s, nil
}

func new(db *gorm.DB) (*Stores, error) {
	usage, err := database.NewDataStore[models.UsageEvent](db, models.USAGE_EVENTS)
	if err != nil {
		return nil, err
	}
	keys, err := database.NewDataStore[models.APIKey](db, models.API_KEYS)
	if err != nil {
		return nil, err
	}
	events, err := database.NewDataStore[models.SecurityEvent](db, models.SECURITY_EVENTS)
	if err != nil {
		return nil, err
	}
	users, err := database.NewDataStore[models.User](db, models.USERS)
	if err != nil {
		return nil, err
	}
	settings, err := database.NewDataStore[models.Setting](db, models.SETTINGS)
	if err != nil {
		return nil, err
	}

	return &Stores{
		db:            db,
		UsageStore:    usage,
		KeyStore:      keys,
		EventStore:    events,
		UserStore:     users,
		SettingsStore: settings,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source.
func (s *Stores) WithClock(now func() time.Time) *Stores {
	s.now = now
	return s
}

func (s *Stores) Close() error {
	return database.Close(s.db)
}

// RecordUsage stores a tracked script fetch. A zero timestamp is set to now.
func (s *Stores) RecordUsage(ctx context.Context, ev models.UsageEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	return s.UsageStore.WithContext(ctx).Insert(&ev)
}

// UsageCount counts tracked fetches since t.
func (s *Stores) UsageCount(ctx context.Context, since time.Time) (int64, error) {
	return s.UsageStore.WithContext(ctx).CountWhere("timestamp >= ?", since)
}

// RecordThreat turns a rule hit into a security event.
func (s *Stores) RecordThreat(ctx context.Context, m threat.Match, ev threat.Event) error {
	at := ev.At
	if at.IsZero() {
		at = s.now()
	}
	return s.EventStore.WithContext(ctx).Insert(&models.SecurityEvent{
		Type:        m.Kind(),
		Severity:    m.Severity(),
		Description: m.Title,
		IP:          ev.IP,
		RuleID:      m.RuleID,
		Path:        ev.Path,
		OccurredAt:  at,
	})
}

// LogQuery selects a page of security events.
type LogQuery struct {
	Page  int
	Limit int
	Type  string
	From  time.Time
	To    time.Time
}

// Logs returns a page of security events, newest first, and the total.
func (s *Stores) Logs(ctx context.Context, q LogQuery) ([]models.SecurityEvent, int64, error) {
	f := database.Filter{OrderBy: "occurred_at desc"}
	if q.Type != "" {
		f.Where = map[string]interface{}{"type": q.Type}
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		f.Column = "occurred_at"
	}
	if !q.From.IsZero() {
		f.From = q.From
	}
	if !q.To.IsZero() {
		f.To = q.To
	}
	return s.EventStore.WithContext(ctx).Page(q.Page, q.Limit, f)
}

// CreateKey generates a key for owner and persists its hash. The plain key
// is returned once and never stored.
func (s *Stores) CreateKey(ctx context.Context, owner, name, env string, permissions []string) (string, *models.APIKey, error) {
	plain, err := cryptoutils.GenerateAPIKey(env)
	if err != nil {
		return "", nil, err
	}
	hash, err := cryptoutils.HashAPIKey(plain)
	if err != nil {
		return "", nil, err
	}

	if name == "" {
		name = "Untitled"
	}
	key := &models.APIKey{
		Owner:       owner,
		Name:        name,
		Prefix:      lookupPrefix(plain),
		Masked:      maskKey(plain),
		Hash:        hash,
		Permissions: strings.Join(permissions, ","),
		RateLimit:   defaultRateLimit(env),
	}
	if err := s.KeyStore.WithContext(ctx).Insert(key); err != nil {
		return "", nil, err
	}

	util.PrintDebug("created api key " + key.Masked)
	return plain, key, nil
}

// Keys lists the owner's keys together with the shared demo keys.
func (s *Stores) Keys(ctx context.Context, owner string) ([]models.APIKey, error) {
	return s.KeyStore.WithContext(ctx).Where("owner IN ?", []string{SeedOwner, owner})
}

// RevokeKey deletes one of the owner's keys. Demo keys cannot be revoked.
func (s *Stores) RevokeKey(ctx context.Context, owner string, id uint) error {
	store := s.KeyStore.WithContext(ctx)
	key, err := store.ByID(id)
	if err != nil {
		return err
	}
	if key.Owner != owner || owner == SeedOwner {
		return database.ErrNotFound
	}
	return store.Delete(id)
}

// LookupKey finds the persisted key matching plain and marks it used.
func (s *Stores) LookupKey(ctx context.Context, plain string) (*models.APIKey, error) {
	store := s.KeyStore.WithContext(ctx)
	candidates, err := store.Where("prefix = ?", lookupPrefix(plain))
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		ok, err := cryptoutils.VerifyAPIKey(plain, candidates[i].Hash)
		if err != nil || !ok {
			continue
		}
		now := s.now()
		candidates[i].LastUsed = &now
		if err := store.Update(&candidates[i]); err != nil {
			return nil, err
		}
		return &candidates[i], nil
	}
	return nil, database.ErrNotFound
}

// SaveSettings upserts every entry for owner.
func (s *Stores) SaveSettings(ctx context.Context, owner string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.Setting{Owner: owner, Key: k, Value: v})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

func (s *Stores) Settings(ctx context.Context, owner string) (map[string]string, error) {
	rows, err := s.SettingsStore.WithContext(ctx).Where("owner = ?", owner)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *Stores) Users(ctx context.Context) ([]models.User, error) {
	return s.UserStore.WithContext(ctx).All()
}

// lookupPrefix keeps the environment part plus four characters, enough to
// narrow the argon2 comparisons to a handful of rows.
func lookupPrefix(key string) string {
	i := strings.LastIndex(key, "_")
	if i < 0 || len(key) < i+5 {
		return util.MaskKey(key, 8)
	}
	return key[:i+5]
}

func maskKey(key string) string {
	i := strings.LastIndex(key, "_")
	if i < 0 || len(key) < 4 {
		return "************"
	}
	return key[:i+1] + "************" + key[len(key)-4:]
}

func defaultRateLimit(env string) string {
	switch env {
	case "live":
		return "10k/day"
	case "test":
		return "1k/day"
	default:
		return "100/day"
	}
}
