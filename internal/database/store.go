package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store is the generic per-table interface.
type Store[T any] interface {
	Name() string
	AutoMigrate() error
	Insert(v *T) error
	InsertBatch(vs []T) (int64, error)
	All() ([]T, error)
	ByID(id uint) (*T, error)
	Update(v *T) error
	Delete(id uint) error
	Count() (int64, error)
}

// DataStore is the gorm backed Store for a single model.
type DataStore[T any] struct {
	name string
	db   *gorm.DB
}

var _ Store[struct{}] = (*DataStore[struct{}])(nil)

func NewDataStore[T any](db *gorm.DB, name string) (*DataStore[T], error) {
	store := &DataStore[T]{db: db, name: name}
	if err := store.AutoMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *DataStore[T]) Name() string {
	return s.name
}

// WithContext returns a copy of the store bound to ctx.
func (s *DataStore[T]) WithContext(ctx context.Context) *DataStore[T] {
	return &DataStore[T]{name: s.name, db: s.db.WithContext(ctx)}
}

// AutoMigrate given model to the database
func (s *DataStore[T]) AutoMigrate() error {
	var instance T
	return s.db.AutoMigrate(&instance)
}

func (s *DataStore[T]) Insert(v *T) error {
	return s.db.Create(v).Error
}

// InsertBatch inserts vs in chunks and returns the number of rows written.
func (s *DataStore[T]) InsertBatch(vs []T) (int64, error) {
	if len(vs) == 0 {
		return 0, nil
	}
	result := s.db.Create(&vs)
	return result.RowsAffected, result.Error
}

func (s *DataStore[T]) All() ([]T, error) {
	var rows []T
	result := s.db.Find(&rows)
	return rows, result.Error
}

// ByID returns ErrNotFound when no row has the given primary key.
func (s *DataStore[T]) ByID(id uint) (*T, error) {
	var v T
	if err := s.db.First(&v, id).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// First returns the first row matching query.
func (s *DataStore[T]) First(query interface{}, args ...interface{}) (*T, error) {
	var v T
	if err := s.db.Where(query, args...).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// Where returns every row matching query.
func (s *DataStore[T]) Where(query interface{}, args ...interface{}) ([]T, error) {
	var rows []T
	result := s.db.Where(query, args...).Find(&rows)
	return rows, result.Error
}

func (s *DataStore[T]) Update(v *T) error {
	return s.db.Save(v).Error
}

// Delete soft deletes for models embedding gorm.Model.
func (s *DataStore[T]) Delete(id uint) error {
	var instance T
	result := s.db.Delete(&instance, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DataStore[T]) Count() (int64, error) {
	var count int64
	var instance T
	result := s.db.Model(&instance).Count(&count)
	return count, result.Error
}

// CountWhere counts rows matching query.
func (s *DataStore[T]) CountWhere(query interface{}, args ...interface{}) (int64, error) {
	var count int64
	var instance T
	result := s.db.Model(&instance).Where(query, args...).Count(&count)
	return count, result.Error
}

// Filter narrows a paged query. Zero values are ignored.
type Filter struct {
	Where   map[string]interface{}
	Column  string
	From    interface{}
	To      interface{}
	OrderBy string
}

// Page returns one page of rows plus the total count matching f.
// Pages start at 1.
func (s *DataStore[T]) Page(page, limit int, f Filter) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if len(f.Where) > 0 {
			db = db.Where(f.Where)
		}
		if f.Column != "" && f.From != nil {
			db = db.Where(f.Column+" >= ?", f.From)
		}
		if f.Column != "" && f.To != nil {
			db = db.Where(f.Column+" <= ?", f.To)
		}
		return db
	}

	var instance T
	var total int64
	if err := s.db.Model(&instance).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := f.OrderBy
	if order == "" {
		order = "id desc"
	}

	var rows []T
	err := s.db.Scopes(scope).Order(order).Offset((page - 1) * limit).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
