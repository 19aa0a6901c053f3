package main

import (
	"flag"
	"log"
	"os"

	"github.com/NordCoder/netpanel/internal/obs"
	"github.com/NordCoder/netpanel/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status, version")
	flag.Parse()

	l, err := obs.NewLogger(obs.LogConfig{Level: "info", App: "migrator"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		l.Fatal("DB_DSN is empty")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		l.Fatal("set dialect", zap.Error(err))
	}
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		l.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	if err := goose.Run(*command, db, "."); err != nil {
		l.Fatal("migrate", zap.String("command", *command), zap.Error(err))
	}
	l.Info("migrations done", zap.String("command", *command))
}
