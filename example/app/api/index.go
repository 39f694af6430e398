package api

import "github.com/onramp-dev/onramp/pkg/routes"

func init() {
	routes.Register("index", routes.Module{
		Get: routes.Inline(hello),
	})
}

func hello() any {
	return map[string]any{"message": "Hello World"}
}
