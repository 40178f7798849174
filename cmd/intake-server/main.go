package main

import (
	"fmt"
	"log"
	"net/http"

	"listplicity-intake-backend/internal/config"
	"listplicity-intake-backend/internal/server"
)

func main() {
	cfg := config.Load()
	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	addr := ":" + cfg.Port
	fmt.Printf("LISTPLICITY intake server listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
