// Comando de mantenimiento: limpia los favoritos de un usuario.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	userID := flag.String("user", "", "id del usuario a limpiar")
	flag.Parse()

	if *userID == "" {
		log.Fatal("usage: seed -user <user-id>")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close(ctx)

	tag, err := conn.Exec(ctx, `UPDATE users SET favorites = '{}' WHERE id = $1`, *userID)
	if err != nil {
		logger.Fatal("clear favorites", zap.Error(err))
	}
	if tag.RowsAffected() == 0 {
		logger.Warn("user not found", zap.String("user_id", *userID))
		return
	}
	logger.Info("favorites cleared", zap.String("user_id", *userID))
}
