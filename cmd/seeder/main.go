package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/mymath-exams/internal/config"
	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/seed"
)

func main() {
	var (
		file    = flag.String("file", "configs/exams.example.yaml", "YAML file with categories, exams and questions")
		dryRun  = flag.Bool("dry-run", false, "Validate the file without writing")
		timeout = flag.Duration("timeout", time.Minute, "Overall seeding timeout")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("component", "seeder").Logger()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("failed to open seed file")
	}
	doc, err := seed.Parse(f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("invalid seed file")
	}
	if *dryRun {
		log.Info().Int("categories", len(doc.Categories)).Msg("seed file is valid")
		return
	}

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	var pg config.Postgres
	if err := env.Parse(&pg); err != nil {
		log.Fatal().Err(err).Msg("invalid database configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, pg.ConnString())
	if err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Msg("failed to connect to database")
	}
	defer pool.Close()

	// One transaction for the whole file.
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		stats, err := seed.Apply(ctx, queries.New(pool).WithTx(tx), doc, log.Logger)
		if err != nil {
			return err
		}
		log.Info().
			Int("categories", stats.Categories).
			Int("exams", stats.Exams).
			Int("questions", stats.Questions).
			Msg("seed applied")
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
}
