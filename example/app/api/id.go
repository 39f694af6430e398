package api

import (
	"errors"
	"net/http"

	"github.com/onramp-dev/onramp/example/app/models"
	"github.com/onramp-dev/onramp/pkg/app"
	"github.com/onramp-dev/onramp/pkg/orm"
	"github.com/onramp-dev/onramp/pkg/routes"
)

func init() {
	routes.Register("[id]", routes.Module{
		Get:    getTask,
		Patch:  routes.Blocking(toggleTask),
		Delete: routes.Blocking(deleteTask),
	})
}

func findTask(id string) (*models.Task, error) {
	var task models.Task
	if err := orm.New(app.DB()).Where("id = ?", id).First(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func notFound() *routes.Response {
	return routes.JSONResponse(http.StatusNotFound,
		map[string]string{"error": "task not found"})
}

func getTask(_ *http.Request, p routes.Params) (any, error) {
	task, err := findTask(p["id"])
	if errors.Is(err, orm.ErrNotFound) {
		return notFound(), nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func toggleTask(_ *http.Request, p routes.Params) (any, error) {
	task, err := findTask(p["id"])
	if errors.Is(err, orm.ErrNotFound) {
		return notFound(), nil
	}
	if err != nil {
		return nil, err
	}

	task.Done = !task.Done
	if err := orm.New(app.DB()).Save(task); err != nil {
		return nil, err
	}
	return task, nil
}

func deleteTask(_ *http.Request, p routes.Params) (any, error) {
	task, err := findTask(p["id"])
	if errors.Is(err, orm.ErrNotFound) {
		return notFound(), nil
	}
	if err != nil {
		return nil, err
	}

	if err := orm.New(app.DB()).Delete(task); err != nil {
		return nil, err
	}
	return &routes.Response{Status: http.StatusNoContent}, nil
}
