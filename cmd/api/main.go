package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/candylabs/sweetshop/internal/cart"
	"github.com/candylabs/sweetshop/internal/config"
	"github.com/candylabs/sweetshop/internal/httpx"
	"github.com/candylabs/sweetshop/internal/inventory"
	kafkax "github.com/candylabs/sweetshop/internal/kafka"
	"github.com/candylabs/sweetshop/internal/postgres"
	"github.com/candylabs/sweetshop/internal/redisx"
	"github.com/candylabs/sweetshop/internal/sweets"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis (cart store)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: one topic each
	pDel := kafkax.NewProducer(cfg.KafkaBrokers, sweets.TopicSweetDeleted, 1024)
	pDel.Start(ctx)
	pBuy := kafkax.NewProducer(cfg.KafkaBrokers, sweets.TopicStockPurchased, 1024)
	pBuy.Start(ctx)
	pRst := kafkax.NewProducer(cfg.KafkaBrokers, sweets.TopicStockRestocked, 1024)
	pRst.Start(ctx)

	// Domain wiring
	repo := &sweets.Repo{DB: db}
	ledger := &sweets.Ledger{DB: db}
	invSvc := &inventory.Service{
		Ledger:            ledger,
		ProducerPurchased: pBuy,
		ProducerRestocked: pRst,
		ServiceName:       cfg.ServiceName,
	}
	cartSvc := &cart.Service{Store: &cart.RedisStore{RDB: rdb}, Sweets: repo}

	router := httpx.NewRouter()
	sh := &httpx.SweetsHandler{
		Catalog:   repo,
		Inventory: invSvc,
		Producer:  pDel,
		Service:   cfg.ServiceName,
	}
	sh.Register(router)
	ch := &httpx.CartHandler{Carts: cartSvc}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range []*kafkax.Producer{pDel, pBuy, pRst} {
		p.Close()
	}
	cancel()
	for _, p := range []*kafkax.Producer{pDel, pBuy, pRst} {
		p.WaitClosed()
	}
}
