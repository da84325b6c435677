package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"busticket/internal/cache"
	intconfig "busticket/internal/config"
	intdb "busticket/internal/db"
	router "busticket/internal/http"
	h "busticket/internal/http/handlers"
	"busticket/internal/mq"
	"busticket/internal/services"
	"busticket/internal/vnpay"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(db); err != nil {
		log.Fatalf("schema bootstrap failed: %v", err)
	}

	redisClient := intconfig.ConnectRedis(env)
	defer intconfig.CloseRedis()
	holds := &cache.Holds{Client: redisClient}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The broker is a projection aid; a missing broker degrades to no events,
	// not a dead service.
	var events mq.BookingEvents
	broker, err := mq.Connect(ctx, env.AMQPURL)
	if err != nil {
		log.Printf("warning: rabbitmq unavailable, booking events disabled: %v", err)
	} else {
		defer broker.Close()
		for _, q := range []string{mq.QueueBookingCreated, mq.QueueBookingCancelled, mq.QueueBookingChanged} {
			if err := broker.DeclareQueue(q); err != nil {
				log.Printf("warning: declare queue %s: %v", q, err)
			}
		}
		events = mq.BookingEvents{MQ: broker}
	}

	gateway := vnpay.New(vnpay.Config{
		TmnCode:    env.VNPTmnCode,
		HashSecret: env.VNPHashSecret,
		PayURL:     env.VNPPayURL,
		ReturnURL:  env.VNPReturnURL,
	})

	h.SetDeps(h.Deps{
		Env:     env,
		Holds:   holds,
		Events:  events,
		Gateway: gateway,
	})

	expirer := services.PaymentService{
		Holds:   holds,
		Events:  events,
		Gateway: gateway,
	}
	listener := cache.ExpiryListener{
		Client:   redisClient,
		OnExpire: expirer.ExpireBooking,
	}
	go listener.Run(ctx)

	r := router.NewRouter(env)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
