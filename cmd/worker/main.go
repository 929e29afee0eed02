package main

import (
	"log"
	"os"

	"qrguard/internal/queue"
	"qrguard/internal/store"
	"qrguard/internal/worker"
)

// The worker drains the bulk scan queue. It shares the queue and store
// packages with the API binary; only the wiring differs.
func main() {
	log.Println("🚀 QRGuard worker starting")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	if err := queue.Init(redisAddr); err != nil {
		log.Fatalf("❌ Redis unreachable at %s: %v", redisAddr, err)
	}
	log.Printf("✅ Redis queue ready (%s)", redisAddr)

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("❌ DB_URL must be set; the worker has nowhere to record results")
	}
	if err := store.Init(dbURL); err != nil {
		log.Fatalf("❌ Postgres unreachable: %v", err)
	}
	log.Println("✅ Postgres store ready, migrations applied")

	// Blocks for the process lifetime.
	worker.Start()
}
