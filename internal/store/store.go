// Package store provides data persistence implementations.
package store

import (
	"context"
	"time"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// ScanRecord is one persisted market scan entry.
type ScanRecord struct {
	ID          int64
	ScannedAt   time.Time
	Interval    models.Interval
	Sentiment   int
	Opportunity models.Opportunity
}

// SizingRecord is one persisted position-sizing decision.
type SizingRecord struct {
	ID        int64
	DecidedAt time.Time
	Equity    float64
	Result    models.PositionSizeResult
}

// ScanFilter narrows journal queries.
type ScanFilter struct {
	Symbol string
	Since  time.Time
	Limit  int
}

// Journal records scans and sizing decisions for later review.
type Journal interface {
	SaveScan(ctx context.Context, interval models.Interval, sentiment int, opportunities []models.Opportunity) error
	GetScans(ctx context.Context, filter ScanFilter) ([]ScanRecord, error)

	SaveSizing(ctx context.Context, equity float64, result *models.PositionSizeResult) error
	GetSizings(ctx context.Context, filter ScanFilter) ([]SizingRecord, error)

	Close() error
}
