package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pfl-dev/paperfolio/internal/logger"
)

const maxHeadlines = 10

// Client fetches recent headlines for a symbol and flattens them into one
// digest string for sentiment scoring and the model prompt.
type Client struct {
	client *resty.Client
	logger *logger.Logger
}

func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0")
	return &Client{client: client, logger: log}
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	PubDate string `xml:"pubDate"`
}

// Search returns a newline-joined digest of recent headlines.
func (c *Client) Search(ctx context.Context, symbol string) (string, error) {
	query := url.QueryEscape(symbol + " stock")
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", query))
	if err != nil {
		return "", fmt.Errorf("news search: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("news search: status %d", resp.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return "", fmt.Errorf("parse news feed: %w", err)
	}

	items := feed.Channel.Items
	if len(items) > maxHeadlines {
		items = items[:maxHeadlines]
	}

	var sb strings.Builder
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(title)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("news search: no headlines for %s", symbol)
	}

	c.logger.Debug("news fetched", "symbol", symbol, "headlines", len(items))
	return sb.String(), nil
}
