// Package main provides the global onramp CLI.
//
// Install once globally:
//
//	go install github.com/onramp-dev/onramp/cmd/onramp@latest
//
// Then:
//
//	onramp new <name>       # scaffold a backend + React Native frontend
//	onramp new <name> --api # backend only
//	onramp run              # dev servers with watch + restart
//	onramp web              # web frontend only, no backend
//	onramp ios              # iOS simulator (+ backend if enabled)
//	onramp android          # Android emulator
//	onramp prepmigrations   # write a new migration stub
//	onramp migrate          # apply pending migrations
//	onramp repair:ios       # clear derived iOS build state
//
// Database commands delegate to the project binary (`go run ./app
// <command>`) so the project's own models and migrations are the ones
// registered when they run.
package main
