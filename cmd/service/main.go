package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"party-service/internal/party"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	port := party.Getenv("PORT", "3001")
	redisURL := party.Getenv("REDIS_URL", "")

	cfg := party.ConfigFromEnv()
	store := party.NewStore()
	hub := party.NewHub()
	go hub.Run()

	// With Redis configured, events take the pub/sub round trip so extra
	// transport replicas can subscribe; otherwise the engine feeds the local
	// hub directly.
	var bc party.Broadcaster = hub
	if redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("party-service: invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		bc = party.NewRedisBroadcaster(ctx, rdb)
		go hub.RunRedisSubscriber(ctx, rdb)
	}

	engine := party.NewEngine(store, cfg, bc, party.NewScheduler())

	r := party.NewRouter(engine, hub,
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	log.Printf("party-service listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("party-service: %v", err)
	}
}
