package models

import "github.com/onramp-dev/onramp/pkg/orm"

// Task is stored in the "tasks" table; the name comes from pluralizing
// the struct name.
type Task struct {
	orm.Model
	Title string `json:"title" gorm:"size:200;not null"`
	Notes string `json:"notes" gorm:"size:500"`
	Done  bool   `json:"done" gorm:"default:false"`
}
