package steps

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const newsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>"AAPL stock" - Google News</title>
<item><title>Apple shares surge after earnings beat</title><link>https://example.com/1</link></item>
<item><title>Apple stock falls on weak demand</title><link>https://example.com/2</link></item>
<item><title><![CDATA[Analysts see growth for Apple]]></title><link>https://example.com/3</link></item>
</channel></rss>`

const socialFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>search results - AAPL</title>
<entry><title>AAPL profit is huge</title><link href="https://example.com/r/1"/></entry>
</feed>`

const emptyFeed = `<?xml version="1.0"?><rss><channel><title>nothing</title></channel></rss>`

func TestParseHeadlines(t *testing.T) {
	titles, err := ParseHeadlines([]byte(newsFeed), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Apple shares surge after earnings beat",
		"Apple stock falls on weak demand",
		"Analysts see growth for Apple",
	}, titles)

	titles, err = ParseHeadlines([]byte(newsFeed), 2)
	require.NoError(t, err)
	assert.Len(t, titles, 2)

	titles, err = ParseHeadlines([]byte(socialFeed), 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL profit is huge"}, titles)
}

func TestLexiconScore(t *testing.T) {
	assert.Equal(t, 1.0, LexiconScore("Shares surge after earnings beat"))
	assert.Equal(t, -1.0, LexiconScore("Stock falls on weak demand"))
	assert.Equal(t, 0.0, LexiconScore("Company holds annual meeting"))
	assert.Equal(t, 0.0, LexiconScore("Profit rises but sales decline and stock drops"), "two positive, two negative")
	assert.Equal(t, 0.333, ScoreHeadlines([]string{"surge", "fall", "growth"}))
	assert.Equal(t, 0.0, ScoreHeadlines(nil))
}

func TestSentimentRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch r.URL.Path + "|" + q {
		case "/news|AAPL stock":
			_, _ = w.Write([]byte(newsFeed))
		case "/social|AAPL":
			_, _ = w.Write([]byte(socialFeed))
		case "/news|MSFT stock":
			_, _ = w.Write([]byte(`<rss><channel><item><title>Microsoft faces downgrade and loss</title></item></channel></rss>`))
		case "/social|MSFT":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(emptyFeed))
		}
	}))
	defer srv.Close()

	cfg := &config.Config{Sentiment: config.Sentiment{
		NewsURL:      srv.URL + "/news?q=%s",
		SocialURL:    srv.URL + "/social?q=%s",
		MaxItems:     6,
		NewsWeight:   0.7,
		SocialWeight: 0.3,
	}}
	s := NewSentiment(cfg, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }

	in := []models.Stock{
		{Ticker: "AAPL", Price: 190, RSI: 55},
		{Ticker: "MSFT", Price: 420},
		{Ticker: "NONE", Price: 50},
	}
	out, stats, err := s.Run(t.Context(), in)
	require.NoError(t, err)

	assert.Equal(t, SentimentStats{Total: 3, NoNews: 1, NotPositive: 1, Passed: 1}, stats)
	require.Len(t, out, 1)

	a := out[0]
	assert.Equal(t, "AAPL", a.Ticker)
	assert.Equal(t, 55.0, a.RSI, "technical fields kept")
	assert.Equal(t, 0.333, a.NewsSentiment)
	assert.Equal(t, 1.0, a.SocialSentiment)
	// 0.7*0.333 + 0.3*1
	assert.Equal(t, 0.533, a.CombinedSentiment)
	assert.Equal(t, 3, a.NewsMentions)
	assert.Equal(t, 1, a.SocialMentions)
	assert.Equal(t, 4, a.TotalMentions)
	assert.Equal(t, "2026-10-14", a.SentimentDate)
}

func TestMergeSentiment(t *testing.T) {
	tech := []models.Stock{{Ticker: "AAPL", RSI: 55}, {Ticker: "MSFT", RSI: 60}}
	sent := []models.Stock{{Ticker: "aapl", CombinedSentiment: 0.5, TotalMentions: 7}}

	out := MergeSentiment(tech, sent)
	require.Len(t, out, 2)
	assert.Equal(t, 0.5, out[0].CombinedSentiment)
	assert.Equal(t, 7, out[0].TotalMentions)
	assert.Equal(t, 55.0, out[0].RSI)
	assert.Zero(t, out[1].CombinedSentiment)
	assert.Zero(t, tech[0].CombinedSentiment, "input is not modified")
}
