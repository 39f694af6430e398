// Package orm is the thin model layer onramp projects build on. It wraps
// GORM with a base Model, table naming driven by Pluralize, and renamed
// aliases for the field types a generated models.go refers to, so project
// code never imports gorm directly.
package orm

import (
	"time"

	"gorm.io/gorm"
)

// Model is the base every project model embeds. Table names are derived
// from the struct name via Pluralize unless the model declares TableName().
type Model struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Field type aliases. Generated models use these names; the underlying
// storage type is whatever the driver maps them to.
type (
	// DateTime is a timestamp column.
	DateTime = time.Time
	// JSON is a raw JSON column payload.
	JSON = []byte
	// DeletedAt marks a soft-delete column outside the base Model.
	DeletedAt = gorm.DeletedAt
)

// DB is an alias so project code can accept the handle without importing gorm.
type DB = gorm.DB

// ErrNotFound is returned by First when no row matches.
var ErrNotFound = gorm.ErrRecordNotFound

// Query is a small fluent wrapper over a gorm handle. Constructed per
// call; it never caches the handle in package state.
type Query struct {
	db *gorm.DB
}

// New wraps an open handle in a Query.
func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

// Model scopes the query to a model.
func (q *Query) Model(v any) *Query {
	return &Query{db: q.db.Model(v)}
}

// Where adds a condition.
func (q *Query) Where(cond string, args ...any) *Query {
	return &Query{db: q.db.Where(cond, args...)}
}

// Order adds an ordering clause.
func (q *Query) Order(value string) *Query {
	return &Query{db: q.db.Order(value)}
}

// Limit caps the result set.
func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

// Get loads all matching rows into dest.
func (q *Query) Get(dest any) error {
	return q.db.Find(dest).Error
}

// First loads the first matching row into dest.
func (q *Query) First(dest any) error {
	return q.db.First(dest).Error
}

// Create inserts value.
func (q *Query) Create(value any) error {
	return q.db.Create(value).Error
}

// Save upserts value.
func (q *Query) Save(value any) error {
	return q.db.Save(value).Error
}

// Delete removes value (soft delete when the model embeds Model).
func (q *Query) Delete(value any) error {
	return q.db.Delete(value).Error
}
