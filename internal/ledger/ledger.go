// Package ledger records one usage row per successful AI call and serves
// per-user history and admin aggregates.
package ledger

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Nina932/nyx/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HistoryLimit caps the per-user usage listing.
const HistoryLimit = 100

const dateLayout = "2006-01-02"

// Tokens approximates the token count of a prompt as its character count.
func Tokens(contents string) int {
	return utf8.RuneCountInString(contents)
}

// Cost multiplies tokens by the unit rate without float drift.
func Cost(tokens int, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(tokens)).Mul(rate)
}

type Ledger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Record(ctx context.Context, rec *models.UsageRecord) error {
	if err := l.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// ListRecent returns the newest records of userID, at most limit of them.
// Records created in the same instant keep insertion order reversed.
func (l *Ledger) ListRecent(ctx context.Context, userID string, limit int) ([]models.UsageRecord, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	records := []models.UsageRecord{}
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type EndpointUsage struct {
	Endpoint string          `json:"endpoint"`
	Calls    int64           `json:"calls"`
	Tokens   int64           `json:"tokens"`
	Cost     decimal.Decimal `json:"cost"`
}

type Stats struct {
	TotalCalls  int64           `json:"totalCalls"`
	TotalTokens int64           `json:"totalTokens"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	ByEndpoint  []EndpointUsage `json:"byEndpoint"`
}

// ErrBadDate is returned by Stats for a date that is not YYYY-MM-DD.
type ErrBadDate struct {
	Value string
}

func (e *ErrBadDate) Error() string {
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.Value)
}

// Stats aggregates usage over [startDate, endDate], both inclusive and
// optional.
func (l *Ledger) Stats(ctx context.Context, startDate, endDate string) (*Stats, error) {
	query := l.db.WithContext(ctx).Model(&models.UsageRecord{})
	if startDate != "" {
		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, &ErrBadDate{Value: startDate}
		}
		query = query.Where("created_at >= ?", start)
	}
	if endDate != "" {
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, &ErrBadDate{Value: endDate}
		}
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	rows := []EndpointUsage{}
	err := query.Select(
		"endpoint, " +
			"COUNT(*) as calls, " +
			"COALESCE(SUM(tokens), 0) as tokens, " +
			"COALESCE(SUM(cost), 0) as cost",
	).Group("endpoint").Order("calls DESC, endpoint ASC").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalCost: decimal.Zero, ByEndpoint: rows}
	for _, r := range rows {
		stats.TotalCalls += r.Calls
		stats.TotalTokens += r.Tokens
		stats.TotalCost = stats.TotalCost.Add(r.Cost)
	}
	return stats, nil
}
