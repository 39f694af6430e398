// A complete onramp project, shaped exactly like the output of
// `onramp new`. Run it from the example directory:
//
//	go run ./app serve
//	go run ./app migrate
//	go run ./app seed
//	go run ./app route:list
package main

import (
	"github.com/onramp-dev/onramp/pkg/app"

	_ "github.com/onramp-dev/onramp/example/app/api"
	_ "github.com/onramp-dev/onramp/example/app/db/migrations"
	_ "github.com/onramp-dev/onramp/example/app/db/seeders"
)

func main() {
	app.Run()
}
