package migrations

import (
	"gorm.io/gorm"

	"github.com/onramp-dev/onramp/example/app/models"
	"github.com/onramp-dev/onramp/pkg/migration"
)

func init() {
	migration.Register("20250810120000_create_tasks_table", &CreateTasksTable{})
}

type CreateTasksTable struct{}

func (m *CreateTasksTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Task{})
}

func (m *CreateTasksTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("tasks")
}
