package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	webAdapter "github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/adapters/web"
	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/app"
	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	queueSize, _ := strconv.Atoi(os.Getenv("AUDIT_QUEUE_SIZE"))
	bus := core.NewEventBus(queueSize)
	auditRepo := core.NewAuditRepository(pool)
	bus.Subscribe(core.NewAuditListener(auditRepo))
	bus.Start()
	defer bus.Close()

	repo := core.NewInventoryRepository(core.NewSKUParser())
	alloc := core.NewAllocationService(pool, repo, bus)
	svc := app.NewAppService(pool, repo, alloc, auditRepo, bus)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"))

	server := &http.Server{Addr: ":" + port, Handler: handler}
	go func() {
		log.Printf("server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	// Deferred bus.Close drains the audit queue before the pool closes.
}
