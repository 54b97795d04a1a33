// Copyright (c) 2026 Critica. All rights reserved.

// Command import seeds the database from CSV fixture files.
//
// # Load Sequence
//
// Files are loaded in dependency order inside a single transaction:
//
//	category.csv    (id, name, slug)
//	genre.csv       (id, name, slug)
//	titles.csv      (id, name, year, category)
//	genre_title.csv (id, title_id, genre_id)
//	users.csv       (id, username, email, role, bio, first_name, last_name)
//	review.csv      (id, title_id, text, author, score, pub_date)
//	comments.csv    (id, review_id, text, author, pub_date)
//
// Fixture identifiers are remapped onto database-assigned keys as rows are
// inserted, so cross-file references (title_id, genre_id, author) resolve
// through the remap tables rather than raw values. Title ratings are
// recomputed once after all reviews are in. A missing file is skipped with a
// warning; any other failure rolls the whole load back.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critica-app/critica/internal/platform/config"
	"github.com/critica-app/critica/internal/platform/constants"
	"github.com/critica-app/critica/internal/platform/database/schema"
	"github.com/critica-app/critica/internal/platform/migration"
	pgstore "github.com/critica-app/critica/internal/platform/postgres"
	"github.com/critica-app/critica/internal/platform/sec"
	"github.com/critica-app/critica/pkg/slice"
	"github.com/critica-app/critica/pkg/uuid"
)

func main() {
	dir := flag.String("dir", "./data/seed", "directory containing the CSV fixture files")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// No deadline on the load itself. Large fixture sets are allowed to take
	// their time; interrupt the process to abort.
	importer := newSeedImporter(pool, log)
	must(log, importer.Run(context.Background(), *dir), "load seed data")

	log.Info("seed_completed")
}

// row is a CSV record keyed by its header column.
type row map[string]string

// loadFunc inserts one fixture file's rows inside the load transaction and
// reports how many it wrote.
type loadFunc func(context.Context, pgx.Tx, []row) (int, error)

// seedImporter tracks the remapping between fixture identifiers and the keys
// the database actually assigned while rows are inserted.
type seedImporter struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	categoryIDs map[string]int64
	genreIDs    map[string]int64
	titleIDs    map[string]string
	userIDs     map[string]string
	reviewIDs   map[string]string
}

func newSeedImporter(pool *pgxpool.Pool, logger *slog.Logger) *seedImporter {
	return &seedImporter{
		pool:        pool,
		logger:      logger,
		categoryIDs: make(map[string]int64),
		genreIDs:    make(map[string]int64),
		titleIDs:    make(map[string]string),
		userIDs:     make(map[string]string),
		reviewIDs:   make(map[string]string),
	}
}

// Run loads every fixture file from dir in dependency order, recomputes the
// derived title ratings, and commits. Any failure rolls everything back.
func (importer *seedImporter) Run(context context.Context, dir string) error {
	steps := []struct {
		file string
		load loadFunc
	}{
		{"category.csv", importer.categories},
		{"genre.csv", importer.genres},
		{"titles.csv", importer.titles},
		{"genre_title.csv", importer.titleGenres},
		{"users.csv", importer.users},
		{"review.csv", importer.reviews},
		{"comments.csv", importer.comments},
	}

	transaction, err := importer.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("import: begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	for _, step := range steps {
		rows, err := readRows(filepath.Join(dir, step.file))
		if err != nil {
			return fmt.Errorf("import: read %s: %w", step.file, err)
		}
		if rows == nil {
			importer.logger.Warn("seed_file_missing", slog.String("file", step.file))
			continue
		}

		count, err := step.load(context, transaction, rows)
		if err != nil {
			return fmt.Errorf("import: load %s: %w", step.file, err)
		}

		importer.logger.Info("seed_file_loaded",
			slog.String("file", step.file),
			slog.Int("rows", count),
		)
	}

	if err := importer.recomputeRatings(context, transaction); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}

	return nil
}

// readRows parses a fixture file into header-keyed rows. A missing file
// returns nil rows and no error so the caller can skip it.
func readRows(path string) ([]row, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []row{}, nil
	}

	header := make(map[string]int, len(records[0]))
	for position, column := range records[0] {
		header[strings.TrimSpace(column)] = position
	}

	return slice.Map(records[1:], func(record []string) row {
		mapped := make(row, len(header))
		for column, position := range header {
			if position < len(record) {
				mapped[column] = record[position]
			}
		}
		return mapped
	}), nil
}

func (importer *seedImporter) categories(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s`,
		schema.CoreCategory.Table, schema.CoreCategory.Name, schema.CoreCategory.Slug,
		schema.CoreCategory.ID,
	)

	for _, record := range rows {
		var id int64
		if err := transaction.QueryRow(context, query, record["name"], record["slug"]).Scan(&id); err != nil {
			return 0, fmt.Errorf("category %q: %w", record["slug"], err)
		}
		importer.categoryIDs[record["id"]] = id
	}

	return len(rows), nil
}

func (importer *seedImporter) genres(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s`,
		schema.CoreGenre.Table, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.ID,
	)

	for _, record := range rows {
		var id int64
		if err := transaction.QueryRow(context, query, record["name"], record["slug"]).Scan(&id); err != nil {
			return 0, fmt.Errorf("genre %q: %w", record["slug"], err)
		}
		importer.genreIDs[record["id"]] = id
	}

	return len(rows), nil
}

func (importer *seedImporter) titles(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		schema.CoreTitle.Table,
		schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.CategoryID,
	)

	for _, record := range rows {
		year, err := strconv.Atoi(record["year"])
		if err != nil {
			return 0, fmt.Errorf("title %q: bad year %q", record["name"], record["year"])
		}

		categoryID, ok := importer.categoryIDs[record["category"]]
		if !ok {
			return 0, fmt.Errorf("title %q: unknown category %q", record["name"], record["category"])
		}

		id := uuid.New()
		if _, err := transaction.Exec(context, query, id, record["name"], year, categoryID); err != nil {
			return 0, fmt.Errorf("title %q: %w", record["name"], err)
		}
		importer.titleIDs[record["id"]] = id
	}

	return len(rows), nil
}

func (importer *seedImporter) titleGenres(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID, schema.CoreTitleGenre.GenreID,
	)

	for _, record := range rows {
		titleID, ok := importer.titleIDs[record["title_id"]]
		if !ok {
			return 0, fmt.Errorf("genre link: unknown title %q", record["title_id"])
		}

		genreID, ok := importer.genreIDs[record["genre_id"]]
		if !ok {
			return 0, fmt.Errorf("genre link: unknown genre %q", record["genre_id"])
		}

		if _, err := transaction.Exec(context, query, titleID, genreID); err != nil {
			return 0, fmt.Errorf("genre link %s/%s: %w", record["title_id"], record["genre_id"], err)
		}
	}

	return len(rows), nil
}

func (importer *seedImporter) users(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.Role, schema.UserAccount.FirstName, schema.UserAccount.LastName,
		schema.UserAccount.Bio,
	)

	for _, record := range rows {
		role := sec.UserRole(record["role"])
		if !role.IsValid() {
			return 0, fmt.Errorf("user %q: unknown role %q", record["username"], record["role"])
		}

		id := uuid.New()
		if _, err := transaction.Exec(context, query,
			id, record["username"], record["email"], string(role),
			record["first_name"], record["last_name"], record["bio"],
		); err != nil {
			return 0, fmt.Errorf("user %q: %w", record["username"], err)
		}
		importer.userIDs[record["id"]] = id
	}

	return len(rows), nil
}

func (importer *seedImporter) reviews(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.SocialReview.Table,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
		schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.CreatedAt, schema.SocialReview.UpdatedAt,
	)

	for _, record := range rows {
		titleID, ok := importer.titleIDs[record["title_id"]]
		if !ok {
			return 0, fmt.Errorf("review %q: unknown title %q", record["id"], record["title_id"])
		}

		authorID, ok := importer.userIDs[record["author"]]
		if !ok {
			return 0, fmt.Errorf("review %q: unknown author %q", record["id"], record["author"])
		}

		score, err := strconv.Atoi(record["score"])
		if err != nil {
			return 0, fmt.Errorf("review %q: bad score %q", record["id"], record["score"])
		}

		published, err := parseSeedTime(record["pub_date"])
		if err != nil {
			return 0, fmt.Errorf("review %q: %w", record["id"], err)
		}

		id := uuid.New()
		if _, err := transaction.Exec(context, query,
			id, titleID, authorID, record["text"], score, published, published,
		); err != nil {
			return 0, fmt.Errorf("review %q: %w", record["id"], err)
		}
		importer.reviewIDs[record["id"]] = id
	}

	return len(rows), nil
}

func (importer *seedImporter) comments(context context.Context, transaction pgx.Tx, rows []row) (int, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID,
		schema.SocialComment.Text, schema.SocialComment.CreatedAt, schema.SocialComment.UpdatedAt,
	)

	for _, record := range rows {
		reviewID, ok := importer.reviewIDs[record["review_id"]]
		if !ok {
			return 0, fmt.Errorf("comment %q: unknown review %q", record["id"], record["review_id"])
		}

		authorID, ok := importer.userIDs[record["author"]]
		if !ok {
			return 0, fmt.Errorf("comment %q: unknown author %q", record["id"], record["author"])
		}

		published, err := parseSeedTime(record["pub_date"])
		if err != nil {
			return 0, fmt.Errorf("comment %q: %w", record["id"], err)
		}

		if _, err := transaction.Exec(context, query,
			uuid.New(), reviewID, authorID, record["text"], published, published,
		); err != nil {
			return 0, fmt.Errorf("comment %q: %w", record["id"], err)
		}
	}

	return len(rows), nil
}

// recomputeRatings refreshes every title's denormalized rating columns in one
// statement, the bulk equivalent of the per-title recompute the review store
// runs on each mutation.
func (importer *seedImporter) recomputeRatings(context context.Context, transaction pgx.Tx) error {
	query := fmt.Sprintf(`
		UPDATE %s t
		SET %s = sub.avg_score, %s = sub.review_count
		FROM (
			SELECT %s, ROUND(AVG(%s), 1) AS avg_score, COUNT(*) AS review_count
			FROM %s
			GROUP BY %s
		) sub
		WHERE t.%s = sub.%s
	`,
		schema.CoreTitle.Table,
		schema.CoreTitle.RatingAvg, schema.CoreTitle.RatingCount,
		schema.SocialReview.TitleID, schema.SocialReview.Score,
		schema.SocialReview.Table,
		schema.SocialReview.TitleID,
		schema.CoreTitle.ID, schema.SocialReview.TitleID,
	)

	if _, err := transaction.Exec(context, query); err != nil {
		return fmt.Errorf("import: recompute ratings: %w", err)
	}

	return nil
}

// parseSeedTime accepts the RFC 3339 timestamps the fixture files carry.
func parseSeedTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad pub_date %q", value)
	}
	return parsed, nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
