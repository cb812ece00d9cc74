// Package main is the entry point for the trailnet report server: a
// read-only HTTP view over the routing graph the build CLI last
// checkpointed.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ali01/trailnet/internal/config"
	"github.com/ali01/trailnet/internal/reportapi"
	"github.com/ali01/trailnet/internal/store"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("server panic recovered: %v", r)
			log.Printf("stack trace:\n%s", debug.Stack())
			os.Exit(1)
		}
	}()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadFromYAML(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	router := gin.Default()
	reportapi.SetupRoutes(router, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("http server panic recovered: %v", r)
				log.Printf("stack trace:\n%s", debug.Stack())
				quit <- syscall.SIGTERM
			}
		}()

		log.Printf("starting report server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	<-quit
	log.Println("shutting down report server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := db.Close(); err != nil {
		log.Printf("warning: error closing database: %v", err)
	}

	log.Println("report server exiting")
}
