package decision

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Parsed is a validated model response.
type Parsed struct {
	Action     Action
	Confidence int
	Reasoning  string
}

var fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseResponse extracts and validates the strict {action, confidence,
// reasoning} contract from a raw model response. A fenced JSON block wins;
// otherwise the outermost brace span is tried. Every malformed shape fails
// the same way: with an error, never a partial decision.
func ParseResponse(raw string) (*Parsed, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model response")
	}

	candidate := ""
	if m := fencedBlockRegex.FindStringSubmatch(cleaned); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		candidate = cleaned[start : end+1]
	}
	if candidate == "" {
		return nil, fmt.Errorf("no JSON object in model response: %.120s", cleaned)
	}

	var wire struct {
		Action     string      `json:"action"`
		Confidence json.Number `json:"confidence"`
		Reasoning  string      `json:"reasoning"`
	}
	dec := json.NewDecoder(strings.NewReader(candidate))
	if err := dec.Decode(&wire); err != nil {
		// Confidence may arrive as a quoted numeric string; retry with a
		// looser shape before giving up.
		var loose struct {
			Action     string `json:"action"`
			Confidence string `json:"confidence"`
			Reasoning  string `json:"reasoning"`
		}
		if err2 := json.Unmarshal([]byte(candidate), &loose); err2 != nil {
			return nil, fmt.Errorf("parse model JSON: %w", err)
		}
		wire.Action = loose.Action
		wire.Confidence = json.Number(loose.Confidence)
		wire.Reasoning = loose.Reasoning
	}

	action, err := parseAction(wire.Action)
	if err != nil {
		return nil, err
	}

	confidence, err := coerceConfidence(string(wire.Confidence))
	if err != nil {
		return nil, err
	}

	return &Parsed{
		Action:     action,
		Confidence: confidence,
		Reasoning:  strings.TrimSpace(wire.Reasoning),
	}, nil
}

func parseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "HOLD":
		return Hold, nil
	case "":
		return "", fmt.Errorf("model response missing action")
	default:
		return "", fmt.Errorf("invalid action %q", s)
	}
}

// coerceConfidence accepts a bare number or a numeric string, requires it to
// be finite, and clamps to [0,100] rounded.
func coerceConfidence(s string) (int, error) {
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return 0, fmt.Errorf("model response missing confidence")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite confidence %q", s)
	}
	c := int(math.Round(f))
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return c, nil
}
