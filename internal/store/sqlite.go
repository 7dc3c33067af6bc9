package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vyrodovalexey/cars-api/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store on a single SQLite table.
// AUTOINCREMENT keeps deleted IDs from being handed out again.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the SQLite database at path and creates the car
// table if it does not exist. Safe to call repeatedly on the same file.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// List returns all cars ordered by ID.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Car, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, make, model, year FROM car ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]model.Car, 0)
	for rows.Next() {
		var car model.Car
		if err := rows.Scan(&car.ID, &car.Make, &car.Model, &car.Year); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cars: %w", err)
	}

	return cars, nil
}

// Get retrieves a car by its ID.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Car, error) {
	if id < 1 {
		return nil, ErrInvalidID
	}

	var car model.Car
	err := s.db.QueryRowContext(ctx,
		`SELECT id, make, model, year FROM car WHERE id = ?`, id,
	).Scan(&car.ID, &car.Make, &car.Model, &car.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get car %d: %w", id, err)
	}

	return &car, nil
}

// Create inserts a new car and returns it with its assigned ID.
func (s *SQLiteStore) Create(ctx context.Context, input *model.CarInput) (*model.Car, error) {
	if input == nil {
		return nil, fmt.Errorf("create car: %w", ErrNilInput)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO car (make, model, year) VALUES (?, ?, ?)`,
		input.Make, input.Model, input.Year,
	)
	if err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create car: last insert id: %w", err)
	}

	return &model.Car{
		ID:    id,
		Make:  input.Make,
		Model: input.Model,
		Year:  input.Year,
	}, nil
}

// Update replaces make, model and year of an existing car.
func (s *SQLiteStore) Update(ctx context.Context, id int64, input *model.CarInput) (*model.Car, error) {
	if id < 1 {
		return nil, ErrInvalidID
	}

	if input == nil {
		return nil, fmt.Errorf("update car: %w", ErrNilInput)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE car SET make = ?, model = ?, year = ? WHERE id = ?`,
		input.Make, input.Model, input.Year, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update car %d: %w", id, err)
	}

	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return &model.Car{
		ID:    id,
		Make:  input.Make,
		Model: input.Model,
		Year:  input.Year,
	}, nil
}

// Delete removes a car by its ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrInvalidID
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM car WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete car %d: %w", id, err)
	}

	return requireAffected(res)
}

// requireAffected maps a statement that touched no rows to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
