package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"planpro/internal/audit"
	"planpro/internal/auth"
	"planpro/internal/config"
	"planpro/internal/kvstore"
	"planpro/internal/server"
	"planpro/internal/store"
	"planpro/internal/websocket"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal("config:", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	kv, err := kvstore.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("kvstore init failed:", err)
	}
	defer kv.Close()

	st, err := store.Open(kv, cfg.AdminPassword)
	if err != nil {
		log.Fatal("store init failed:", err)
	}

	hub := websocket.NewHub()
	app := &server.App{
		Store:    st,
		Sessions: auth.NewManager(kv, kvstore.NewSessionCache(), st),
		Trail:    audit.NewTrail(kv, hub),
		Hub:      hub,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, app)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("planpro listening on %s (db %s)", addr, cfg.DBPath)
	log.Fatal(http.ListenAndServe(addr, logging(requireAuth(app, mux))))
}
