package decision

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a disciplined portfolio advisor for a simulated personal account.
You receive one instrument per request: current quote, position state, technical
indicators, risk flags, recent news and prior decisions.

Decide BUY, SELL or HOLD for this instrument only.

Rules:
1. Respect the risk flags: never recommend BUY when the position cap is reached.
2. Prefer HOLD over churning; consider the prior decisions for continuity.
3. Confidence is 0-100, higher means more certain.
4. Keep reasoning under three sentences.

Respond with ONLY this JSON object (a fenced code block is acceptable):
{
  "action": "BUY",
  "confidence": 70,
  "reasoning": "why"
}`

// BuildUserPrompt renders the decision context for the model.
func BuildUserPrompt(dc *Context) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s (%s)\n", dc.Symbol, dc.Currency)
	fmt.Fprintf(&sb, "Price: %.2f (%+.2f, %+.2f%%)\n", dc.Price, dc.Change, dc.ChangePercent)
	if dc.PE > 0 {
		fmt.Fprintf(&sb, "PE: %.1f\n", dc.PE)
	}
	if dc.DividendYield > 0 {
		fmt.Fprintf(&sb, "Dividend yield: %.2f%%\n", dc.DividendYield)
	}

	sb.WriteString("\n## Position\n")
	if dc.Position.Shares > 0 {
		fmt.Fprintf(&sb, "%d shares, cost %.2f %s, PnL %+.2f%%\n",
			dc.Position.Shares, dc.Position.CostPrice, dc.Position.CostCurrency, dc.Position.PnLPercent)
	} else {
		sb.WriteString("No open position.\n")
	}

	sb.WriteString("\n## Technicals\n")
	sb.WriteString(dc.TechnicalSummary)
	sb.WriteString("\n")

	sb.WriteString("\n## Risk flags\n")
	fmt.Fprintf(&sb, "stop_loss=%v max_position=%v cooldown=%v trades_today=%d/%d\n",
		dc.Risk.StopLossTriggered, dc.Risk.MaxPositionReached, dc.Risk.CooldownActive,
		dc.Risk.DailyTradeCount, dc.Risk.DailyTradeLimit)

	if len(dc.RecentPrices) > 0 {
		sb.WriteString("\n## Recent prices (newest first)\n")
		n := len(dc.RecentPrices)
		if n > 10 {
			n = 10
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, "%.2f ", dc.RecentPrices[i])
		}
		sb.WriteString("\n")
	}

	if len(dc.PriorDecisions) > 0 {
		sb.WriteString("\n## Prior decisions (newest first)\n")
		for _, pd := range dc.PriorDecisions {
			fmt.Fprintf(&sb, "- %s (%d) at %s\n", pd.Action, pd.Confidence, pd.CreatedAt.Format("2006-01-02 15:04"))
		}
	}

	sb.WriteString("\n## News\n")
	if strings.TrimSpace(dc.News) != "" {
		sb.WriteString(dc.News)
		fmt.Fprintf(&sb, "\nSentiment score: %+.2f\n", dc.Sentiment.Score)
	} else {
		sb.WriteString("No recent news found.\n")
	}

	sb.WriteString("\nReturn your decision as JSON.")
	return sb.String()
}
