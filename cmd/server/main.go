package main

import (
	"log"

	"staking_sim/internal/app"
)

func main() {
	a := app.NewApp(app.Options{})
	if err := a.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
