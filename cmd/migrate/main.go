// cmd/migrate/main.go
package main

import (
	"database/sql"
	"flag"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"blog-backend/internal/config"
	"blog-backend/migrations"
	"blog-backend/pkg/logger"
)

const usage = "Usage: migrate [-dir .] COMMAND\n\nCommands:\n  up\n  down\n  status\n  version"

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	dir := flag.String("dir", ".", "directory with migration files (inside the embedded FS)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		log.Fatal().Msg(usage)
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load database config")
	}

	db, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("Failed to set dialect")
	}

	command := args[0]
	switch command {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	case "version":
		err = goose.Version(db, *dir)
	default:
		log.Fatal().Str("command", command).Msg("Unknown command\n" + usage)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Migration failed")
	}
	log.Info().Str("command", command).Msg("✅ Migration done")
}
