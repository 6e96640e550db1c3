package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrAssetNotFound = errors.New("not found in datasource")
	ErrInvalidRange  = errors.New("end date before start date")
)

// Bounds used when a caller leaves one side of the range open.
var (
	minDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

type assetsRepository interface {
	GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error)
}
type pricesRepository interface {
	GetDailyPrices(ctx context.Context, arg getDailyPricesParams) ([]priceRow, error)
}

// Database is the PostgreSQL price provider.
type Database struct {
	assets assetsRepository
	prices pricesRepository
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	q := &queries{db: conn}
	return &Database{
		assets: q,
		prices: q,
		conn:   conn}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

// boundedRange fills open ends of the range.
func boundedRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		start = minDate
	}
	if end.IsZero() {
		end = maxDate
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, end, nil
}
