package trading

import (
	"github.com/pfl-dev/paperfolio/internal/decision"
	"github.com/pfl-dev/paperfolio/internal/storage"
)

// ApplyBuy folds a new lot into the position: shares increase and the cost
// basis becomes the share-weighted average of the old and new lots.
func ApplyBuy(pos *storage.Position, qty int64, price float64, currency string) {
	if qty <= 0 {
		return
	}
	oldShares := pos.Shares
	newShares := oldShares + qty
	if oldShares > 0 && pos.CostPrice > 0 {
		pos.CostPrice = (float64(oldShares)*pos.CostPrice + float64(qty)*price) / float64(newShares)
	} else {
		pos.CostPrice = price
	}
	pos.Shares = newShares
	pos.CostCurrency = currency
	pos.CurrentPrice = price
	pos.PriceCurrency = currency
}

// ApplySell reduces shares with a floor at zero; the cost basis is untouched.
func ApplySell(pos *storage.Position, qty int64, price float64, currency string) {
	if qty <= 0 {
		return
	}
	pos.Shares -= qty
	if pos.Shares < 0 {
		pos.Shares = 0
	}
	pos.CurrentPrice = price
	pos.PriceCurrency = currency
}

// Execute applies a sized decision to the position and returns the trade
// record. qty must already have passed the risk gates; qty<=0 returns nil.
func Execute(d *decision.Decision, pos *storage.Position, qty int64, price float64, currency string) *storage.Trade {
	if qty <= 0 {
		return nil
	}

	switch d.Action {
	case decision.Buy:
		ApplyBuy(pos, qty, price, currency)
	case decision.Sell:
		ApplySell(pos, qty, price, currency)
	default:
		return nil
	}

	return &storage.Trade{
		Symbol:   d.Symbol,
		Action:   string(d.Action),
		Shares:   qty,
		Price:    price,
		Currency: currency,
		Reason:   d.Reasoning,
	}
}
