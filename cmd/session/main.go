package main

import (
	"log"

	"fish-arcade/internal/config"
	"fish-arcade/internal/session"
)

func main() {
	cfg := config.LoadSession()
	store := session.NewStore()
	r := session.SetupRouter(store)

	log.Printf("Session service listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
