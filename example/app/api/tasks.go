package api

import (
	"net/http"

	"github.com/onramp-dev/onramp/example/app/models"
	"github.com/onramp-dev/onramp/pkg/app"
	"github.com/onramp-dev/onramp/pkg/bind"
	"github.com/onramp-dev/onramp/pkg/orm"
	"github.com/onramp-dev/onramp/pkg/routes"
)

func init() {
	routes.Register("tasks", routes.Module{
		Get:  listTasks,
		Post: routes.Blocking(createTask),
	})
}

func listTasks(r *http.Request) (any, error) {
	q := orm.New(app.DB()).Model(&models.Task{}).Order("created_at desc")
	if done := r.URL.Query().Get("done"); done != "" {
		q = q.Where("done = ?", done == "true")
	}

	var tasks []models.Task
	if err := q.Get(&tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

type createTaskInput struct {
	Title string `json:"title" validate:"required,min=3"`
	Notes string `json:"notes" validate:"max=500"`
}

func createTask(r *http.Request) (any, error) {
	var in createTaskInput
	fields, err := bind.JSON(r, &in)
	if err != nil {
		return routes.JSONResponse(http.StatusBadRequest,
			map[string]string{"error": err.Error()}), nil
	}
	if len(fields) > 0 {
		return routes.JSONResponse(http.StatusUnprocessableEntity,
			map[string]any{"errors": fields}), nil
	}

	task := models.Task{Title: in.Title, Notes: in.Notes}
	if err := orm.New(app.DB()).Create(&task); err != nil {
		return nil, err
	}
	return routes.JSONResponse(http.StatusCreated, task), nil
}
