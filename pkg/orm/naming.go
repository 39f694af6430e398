package orm

import "gorm.io/gorm/schema"

// NamingStrategy derives table names with Pluralize instead of GORM's
// default inflection rules, so a Person model lands in a "people" table.
// All other naming (columns, indexes, joins) stays on GORM defaults.
//
// Models that declare their own TableName() method are resolved by GORM
// before the namer is consulted, so an explicit table name always wins.
type NamingStrategy struct {
	schema.NamingStrategy
}

// TableName maps a model struct name to its table name.
func (NamingStrategy) TableName(name string) string {
	return Pluralize(name)
}
