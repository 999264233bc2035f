package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the data-store collaborator for the decision cycle. All
// queries are parameterized through gorm; no query text is built from values.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Price history

func (r *Repository) SavePricePoint(pp *PricePoint) error {
	return r.db.Create(pp).Error
}

// GetPriceHistory returns up to limit points for the symbol, most recent first.
func (r *Repository) GetPriceHistory(symbol string, limit int) ([]PricePoint, error) {
	var points []PricePoint
	err := r.db.Where("symbol = ?", symbol).
		Order("recorded_at DESC").Limit(limit).Find(&points).Error
	return points, err
}

// LastPricePoint returns the newest stored point for the symbol, or nil.
func (r *Repository) LastPricePoint(symbol string) (*PricePoint, error) {
	var pp PricePoint
	err := r.db.Where("symbol = ?", symbol).Order("recorded_at DESC").First(&pp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

// Positions

// GetPosition returns the row for the symbol, or an empty zero-share position
// when none exists yet.
func (r *Repository) GetPosition(symbol string) (*Position, error) {
	var pos Position
	err := r.db.Where("symbol = ?", symbol).First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Position{Symbol: symbol}, nil
	}
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func (r *Repository) SavePosition(pos *Position) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(pos).Error
}

func (r *Repository) GetAllPositions() ([]Position, error) {
	var positions []Position
	err := r.db.Where("shares > 0").Order("symbol").Find(&positions).Error
	return positions, err
}

// Decisions

func (r *Repository) SaveDecision(d *Decision) error {
	return r.db.Create(d).Error
}

func (r *Repository) GetRecentDecisions(symbol string, limit int) ([]Decision, error) {
	var decisions []Decision
	err := r.db.Where("symbol = ?", symbol).
		Order("created_at DESC").Limit(limit).Find(&decisions).Error
	return decisions, err
}

// LastDecisionTime returns the timestamp of the newest decision for the
// symbol; the zero time when there is none.
func (r *Repository) LastDecisionTime(symbol string) (time.Time, error) {
	var d Decision
	err := r.db.Where("symbol = ?", symbol).Order("created_at DESC").First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return d.CreatedAt, nil
}

func (r *Repository) GetLatestDecisions(limit int) ([]Decision, error) {
	var decisions []Decision
	err := r.db.Order("created_at DESC").Limit(limit).Find(&decisions).Error
	return decisions, err
}

// Trades

func (r *Repository) SaveTrade(t *Trade) error {
	return r.db.Create(t).Error
}

// CountTradesToday counts trades for the symbol since local midnight.
func (r *Repository) CountTradesToday(symbol string) (int, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var count int64
	err := r.db.Model(&Trade{}).
		Where("symbol = ? AND created_at >= ?", symbol, startOfDay).
		Count(&count).Error
	return int(count), err
}

func (r *Repository) GetRecentTrades(limit int) ([]Trade, error) {
	var trades []Trade
	err := r.db.Order("created_at DESC").Limit(limit).Find(&trades).Error
	return trades, err
}

// Snapshots

func (r *Repository) SaveSnapshot(s *CycleSnapshot) error {
	return r.db.Create(s).Error
}

func (r *Repository) GetLatestSnapshot() (*CycleSnapshot, error) {
	var s CycleSnapshot
	err := r.db.Order("created_at DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
