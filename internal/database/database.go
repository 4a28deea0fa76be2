// Package database loads pipeline records into the SQLite store.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/amaumene/bestmovies/internal/constants"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
	"github.com/amaumene/bestmovies/internal/models"
)

const (
	driverName = "sqlite3"
	dbDirMode  = 0755
)

// Table names
const (
	TableBestMovies = "BestMovies"
	TableRatings    = "Ratings"
	TableMovieInfo  = "MovieInfo"
)

// Database is the persistence surface used by the session.
type Database interface {
	Close() error
	RecreateSchema(ctx context.Context) error
	LoadBestMovies(ctx context.Context, movies []models.RankedMovie) error
	LoadRatings(ctx context.Context, film *models.FilmDetail) error
	LoadMovieInfo(ctx context.Context, film *models.FilmDetail) error
	BestMovies(ctx context.Context) ([]models.RankedMovie, error)
	CountRows(ctx context.Context, table string) (int, error)
}

var _ Database = (*DB)(nil)

type DB struct {
	conn *sqlx.DB
}

// New opens the SQLite database at dbPath, creating its directory. The
// schema is left untouched until RecreateSchema is called.
func New(dbPath string) (*DB, error) {
	if dbPath == "" {
		dbPath = constants.DefaultDatabasePath
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps a :memory: database on a single connection
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// NewWithConn wraps an existing connection.
func NewWithConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

var schema = []string{
	`DROP TABLE IF EXISTS "BestMovies"`,
	`DROP TABLE IF EXISTS "Ratings"`,
	`DROP TABLE IF EXISTS "MovieInfo"`,
	`CREATE TABLE "BestMovies" (
		"Rank" INTEGER PRIMARY KEY,
		"Title" TEXT NOT NULL,
		"Score" INTEGER
	)`,
	`CREATE TABLE "Ratings" (
		"Rank" INTEGER PRIMARY KEY,
		"Title" TEXT NOT NULL,
		"RottenTomatoesScore" TEXT,
		"CriticScore" REAL,
		"AudienceScore" REAL
	)`,
	`CREATE TABLE "MovieInfo" (
		"Rank" INTEGER PRIMARY KEY,
		"Title" TEXT NOT NULL,
		"Synopsis" TEXT NOT NULL,
		"Genres" TEXT NOT NULL,
		"Rating" TEXT NOT NULL,
		"Director" TEXT NOT NULL,
		"Writers" TEXT NOT NULL,
		"ReleaseTime" TEXT NOT NULL,
		"BoxOffice" INTEGER,
		"Length" INTEGER,
		"Studio" TEXT NOT NULL,
		"Actors" TEXT NOT NULL,
		"Language" TEXT NOT NULL,
		"Country" TEXT NOT NULL,
		"Awards" TEXT NOT NULL
	)`,
}

// RecreateSchema drops and recreates the three tables. Every row loaded
// before is lost.
func (db *DB) RecreateSchema(ctx context.Context) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistenceError("failed to begin schema transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return apperrors.NewPersistenceError("failed to recreate schema", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistenceError("failed to commit schema", err)
	}
	return nil
}

const insertBestMovie = `INSERT INTO BestMovies (Rank, Title, Score) VALUES (:Rank, :Title, :Score)`

// LoadBestMovies inserts a listing in order, in a single transaction. A rank
// already present fails the whole load.
func (db *DB) LoadBestMovies(ctx context.Context, movies []models.RankedMovie) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistenceError("failed to begin load", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range movies {
		if _, err := tx.NamedExecContext(ctx, insertBestMovie, m); err != nil {
			return apperrors.NewPersistenceError(fmt.Sprintf("failed to insert rank %d into %s", m.Rank, TableBestMovies), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistenceError("failed to commit listing", err)
	}
	return nil
}

type ratingRow struct {
	Rank           int      `db:"Rank"`
	Title          string   `db:"Title"`
	RottenTomatoes *string  `db:"RottenTomatoesScore"`
	CriticScore    *float64 `db:"CriticScore"`
	AudienceScore  *float64 `db:"AudienceScore"`
}

const insertRating = `INSERT INTO Ratings (Rank, Title, RottenTomatoesScore, CriticScore, AudienceScore)
	VALUES (:Rank, :Title, :RottenTomatoesScore, :CriticScore, :AudienceScore)`

func (db *DB) LoadRatings(ctx context.Context, film *models.FilmDetail) error {
	row := ratingRow{
		Rank:           film.Rank,
		Title:          film.Title,
		RottenTomatoes: film.RottenTomatoes,
		CriticScore:    film.CriticScore,
		AudienceScore:  film.AudienceScore,
	}
	if _, err := db.conn.NamedExecContext(ctx, insertRating, row); err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to insert rank %d into %s", film.Rank, TableRatings), err)
	}
	return nil
}

type movieInfoRow struct {
	Rank        int    `db:"Rank"`
	Title       string `db:"Title"`
	Synopsis    string `db:"Synopsis"`
	Genres      string `db:"Genres"`
	Rating      string `db:"Rating"`
	Director    string `db:"Director"`
	Writers     string `db:"Writers"`
	ReleaseTime string `db:"ReleaseTime"`
	BoxOffice   *int64 `db:"BoxOffice"`
	Length      *int   `db:"Length"`
	Studio      string `db:"Studio"`
	Actors      string `db:"Actors"`
	Language    string `db:"Language"`
	Country     string `db:"Country"`
	Awards      string `db:"Awards"`
}

const insertMovieInfo = `INSERT INTO MovieInfo (Rank, Title, Synopsis, Genres, Rating, Director, Writers,
	ReleaseTime, BoxOffice, Length, Studio, Actors, Language, Country, Awards)
	VALUES (:Rank, :Title, :Synopsis, :Genres, :Rating, :Director, :Writers,
	:ReleaseTime, :BoxOffice, :Length, :Studio, :Actors, :Language, :Country, :Awards)`

func (db *DB) LoadMovieInfo(ctx context.Context, film *models.FilmDetail) error {
	row := movieInfoRow{
		Rank:        film.Rank,
		Title:       film.Title,
		Synopsis:    film.Synopsis,
		Genres:      models.JoinNames(film.Genres),
		Rating:      film.Rating,
		Director:    models.JoinNames(film.Directors),
		Writers:     models.JoinNames(film.Writers),
		ReleaseTime: film.ReleaseDate,
		BoxOffice:   film.BoxOffice,
		Length:      film.Runtime,
		Studio:      film.Studio,
		Actors:      models.JoinNames(film.Actors),
		Language:    film.Language,
		Country:     film.Country,
		Awards:      film.Awards,
	}
	if _, err := db.conn.NamedExecContext(ctx, insertMovieInfo, row); err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to insert rank %d into %s", film.Rank, TableMovieInfo), err)
	}
	return nil
}

// BestMovies returns the loaded listing ordered by rank.
func (db *DB) BestMovies(ctx context.Context) ([]models.RankedMovie, error) {
	var movies []models.RankedMovie
	if err := db.conn.SelectContext(ctx, &movies, `SELECT Rank, Title, Score FROM BestMovies ORDER BY Rank`); err != nil {
		return nil, apperrors.NewPersistenceError("failed to read "+TableBestMovies, err)
	}
	return movies, nil
}

// CountRows returns the number of rows in one of the pipeline tables.
func (db *DB) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case TableBestMovies, TableRatings, TableMovieInfo:
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}

	var n int
	if err := db.conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM "`+table+`"`); err != nil {
		return 0, apperrors.NewPersistenceError("failed to count "+table, err)
	}
	return n, nil
}

// IsConstraintViolation reports whether err was caused by a SQLite
// constraint, such as a duplicate rank.
func IsConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
