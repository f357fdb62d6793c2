package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/kicklink/social-backend/internal/config"
	"github.com/kicklink/social-backend/internal/db"
	"github.com/kicklink/social-backend/internal/model"
	"github.com/kicklink/social-backend/internal/server"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	srv := server.New(nil, cfg, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect the DB in the background so Cloud Run gets a listening
	// port immediately; repositories report not-ready until injection.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(
			&model.Conversation{},
			&model.ConversationParticipant{},
			&model.Message{},
			&model.TradeProposal{},
			&model.Comment{},
			&model.CommentLike{},
			&model.Sneaker{},
			&model.Notification{},
		); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
