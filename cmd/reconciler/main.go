package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/candylabs/sweetshop/internal/cart"
	"github.com/candylabs/sweetshop/internal/config"
	kafkax "github.com/candylabs/sweetshop/internal/kafka"
	"github.com/candylabs/sweetshop/internal/reconcile"
	"github.com/candylabs/sweetshop/internal/redisx"
	"github.com/candylabs/sweetshop/internal/sweets"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis holds both the carts to sweep and the dedup keys.
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &reconcile.Service{
		Carts:       &cart.RedisStore{RDB: rdb},
		Dedup:       &redisx.Dedup{RDB: rdb, Service: "reconciler"},
		ServiceName: cfg.ServiceName + "-reconciler",
	}

	group := getenv("RECONCILER_GROUP", "cart-reconciler")
	workers := mustAtoi(os.Getenv("RECONCILER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, sweets.TopicSweetDeleted, workers)

	go func() {
		log.Printf("reconciler started: group=%s topic=%s workers=%d", group, sweets.TopicSweetDeleted, workers)
		if err := cons.Start(ctx, svc.HandleSweetDeleted); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down reconciler...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
