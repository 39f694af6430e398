package seeders

import (
	"gorm.io/gorm"

	"github.com/onramp-dev/onramp/example/app/models"
	"github.com/onramp-dev/onramp/pkg/app"
)

func init() {
	app.RegisterSeeder("tasks", seedTasks)
}

// seedTasks inserts a starter task once; reruns are no-ops.
func seedTasks(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Task{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.Task{
		Title: "Try the API",
		Notes: "GET /api/tasks lists everything in this table.",
	}).Error
}
