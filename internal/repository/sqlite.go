package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/moviecup/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS ratings (
			movie_key TEXT PRIMARY KEY,
			movie_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			poster_path TEXT,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			rated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_results (
			id TEXT PRIMARY KEY,
			genres TEXT NOT NULL,
			bracket_size INTEGER NOT NULL,
			winner_id INTEGER NOT NULL,
			winner_title TEXT NOT NULL,
			winner_poster TEXT,
			finished_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_finished ON tournament_results(finished_at)`,
		`CREATE INDEX IF NOT EXISTS idx_results_winner ON tournament_results(winner_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// ==================== Rating Methods ====================

// ratingKey is the store identity of a movie's rating
func ratingKey(movieID int) string {
	return strconv.Itoa(movieID)
}

// ListRatings returns every rating, most recent first
func (r *Repository) ListRatings(ctx context.Context) ([]models.RatingRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT movie_id, title, COALESCE(poster_path, ''), rating, rated_at
		FROM ratings
		ORDER BY rated_at DESC, movie_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []models.RatingRecord{}
	for rows.Next() {
		var rec models.RatingRecord
		if err := rows.Scan(&rec.MovieID, &rec.Title, &rec.PosterPath, &rec.Rating, &rec.RatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rec)
	}
	return ratings, rows.Err()
}

// GetRating returns the rating stored for a movie
func (r *Repository) GetRating(ctx context.Context, movieID int) (*models.RatingRecord, error) {
	var rec models.RatingRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT movie_id, title, COALESCE(poster_path, ''), rating, rated_at
		FROM ratings WHERE movie_key = ?
	`, ratingKey(movieID)).Scan(&rec.MovieID, &rec.Title, &rec.PosterPath, &rec.Rating, &rec.RatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertRating inserts or replaces the rating of record.MovieID
func (r *Repository) UpsertRating(ctx context.Context, record models.RatingRecord) error {
	ratedAt := record.RatedAt
	if ratedAt.IsZero() {
		ratedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (movie_key, movie_id, title, poster_path, rating, rated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(movie_key) DO UPDATE SET
			title = excluded.title,
			poster_path = excluded.poster_path,
			rating = excluded.rating,
			rated_at = excluded.rated_at
	`, ratingKey(record.MovieID), record.MovieID, record.Title, record.PosterPath, record.Rating, ratedAt)
	return err
}

// CountRatings returns how many movies have been rated
func (r *Repository) CountRatings(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n)
	return n, err
}

// ==================== Result Methods ====================

// SaveResult records a finished tournament
func (r *Repository) SaveResult(ctx context.Context, result models.TournamentResult) error {
	genres, err := json.Marshal(result.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	finishedAt := result.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tournament_results (id, genres, bracket_size, winner_id, winner_title, winner_poster, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, result.ID, string(genres), result.BracketSize, result.WinnerID, result.WinnerTitle, result.WinnerPoster, finishedAt)
	return err
}

// ListResults returns the most recent finished tournaments. limit <= 0 returns all.
func (r *Repository) ListResults(ctx context.Context, limit int) ([]models.TournamentResult, error) {
	query := `
		SELECT id, genres, bracket_size, winner_id, winner_title, COALESCE(winner_poster, ''), finished_at
		FROM tournament_results
		ORDER BY finished_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.TournamentResult{}
	for rows.Next() {
		var res models.TournamentResult
		var genres string
		if err := rows.Scan(&res.ID, &genres, &res.BracketSize, &res.WinnerID, &res.WinnerTitle, &res.WinnerPoster, &res.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(genres), &res.Genres); err != nil {
			return nil, fmt.Errorf("decode genres of %s: %w", res.ID, err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// CountResults returns how many tournaments have finished
func (r *Repository) CountResults(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournament_results`).Scan(&n)
	return n, err
}

// WinnerCount is a movie with the number of tournaments it has won
type WinnerCount struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
	Wins    int    `json:"wins"`
}

// TopWinners returns the movies that won most often
func (r *Repository) TopWinners(ctx context.Context, limit int) ([]WinnerCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT winner_id, MAX(winner_title), COUNT(*) AS wins
		FROM tournament_results
		GROUP BY winner_id
		ORDER BY wins DESC, winner_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	winners := []WinnerCount{}
	for rows.Next() {
		var w WinnerCount
		if err := rows.Scan(&w.MovieID, &w.Title, &w.Wins); err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return winners, rows.Err()
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting updates a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"ratings": true, "tournament_results": true,
}

// ClearTable clears all data from a table
// Only allows clearing whitelisted tables to prevent SQL injection
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to use string concatenation now that we've validated the table name
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
