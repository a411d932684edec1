// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"quizclash-backend/internal/auth"
	"quizclash-backend/internal/cache"
	"quizclash-backend/internal/database"
	"quizclash-backend/internal/handlers"
	"quizclash-backend/internal/hub"
	"quizclash-backend/internal/mail"
	"quizclash-backend/internal/match"
	"quizclash-backend/internal/middleware"
	"quizclash-backend/internal/payment"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		log.Fatalf("failed to init auth keys: %v", err)
	}

	database.ConnectDB()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}
	cancel()

	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	h := hub.New(logger)
	svc := match.NewService(database.NewMatchStore(database.DB), h, logger)
	pay := payment.NewClientFromEnv(logger)
	mailer := mail.NewMailerFromEnv(logger)
	if !mailer.Enabled() {
		logger.Warn("SMTP not configured, reset codes will be logged instead of mailed")
	}

	api := handlers.NewAPI(svc, h, pay, mailer, logger)

	mux := http.NewServeMux()
	api.Routes(mux)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, middleware.LogMiddleware(logger)(mux)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
