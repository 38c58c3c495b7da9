package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"editflow-backend/pkg/container"
)

// startServices verifies the worker's backing services before it starts
// pulling tasks, and exposes a health endpoint for orchestration probes.
func startServices(c *container.Container) error {
	log.Println("============================================")
	log.Println("EditFlow worker starting...")
	log.Println("============================================")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Println("checking Redis connection...")
	if err := c.Redis.HealthCheck(ctx); err != nil {
		log.Printf("Redis check failed: %v", err)
		return err
	}
	log.Println("Redis: OK")

	log.Println("checking Postgres connection...")
	if err := c.DB.Ping(ctx); err != nil {
		log.Printf("Postgres check failed: %v", err)
		return err
	}
	log.Println("Postgres: OK")

	go startHealthCheckServer()

	return nil
}

// startHealthCheckServer starts the HTTP server for health checks
func startHealthCheckServer() {
	http.HandleFunc("/health", healthCheckHandler)
	http.HandleFunc("/ready", readyCheckHandler)

	log.Println("[Health] starting health check server on :9999")
	if err := http.ListenAndServe(":9999", nil); err != nil {
		log.Printf("[Health] failed to start: %v", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"UP","service":"editflow-worker"}`))
}

// readyCheckHandler handles the Kubernetes readiness probe
func readyCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"READY"}`))
}
