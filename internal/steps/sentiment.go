package steps

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	positiveWords = []string{"gain", "up", "rise", "beat", "positive", "growth", "profit", "upgrade", "buy", "surge"}
	negativeWords = []string{"drop", "down", "fall", "miss", "negative", "loss", "downgrade", "sell", "crash", "decline"}
)

type SentimentStats struct {
	Total       int `json:"total"`
	NoNews      int `json:"no_news"`
	NotPositive int `json:"not_positive"`
	Passed      int `json:"passed"`
}

// Sentiment тональность RSS заголовков новостей и соцсетей по тикеру.
// Дальше проходят только тикеры с положительным итоговым сентиментом.
type Sentiment struct {
	http    *resty.Client
	cfg     config.Sentiment
	limiter *rate.Limiter
	now     func() time.Time
	log     *zap.Logger
}

func NewSentiment(cfg *config.Config, log *zap.Logger) *Sentiment {
	sc := cfg.Sentiment
	if sc.MaxItems <= 0 {
		sc.MaxItems = 6
	}
	timeout := sc.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if sc.Delay > 0 {
		limit = rate.Every(sc.Delay)
	}

	h := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; daily_trader/1.0)")
	return &Sentiment{
		http:    h,
		cfg:     sc,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		log:     log.Named("sentiment"),
	}
}

func (s *Sentiment) Run(ctx context.Context, stocks []models.Stock) ([]models.Stock, SentimentStats, error) {
	stats := SentimentStats{Total: len(stocks)}
	today := s.now().Format("2006-01-02")

	var out []models.Stock
	for i, st := range stocks {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, stats, err
		}

		news := s.headlines(ctx, s.cfg.NewsURL, st.Ticker+" stock")
		if len(news) == 0 {
			stats.NoNews++
			continue
		}
		social := s.headlines(ctx, s.cfg.SocialURL, st.Ticker)

		newsScore := ScoreHeadlines(news)
		socialScore := ScoreHeadlines(social)
		combined := helper.Round(s.cfg.NewsWeight*newsScore+s.cfg.SocialWeight*socialScore, 3)

		log := s.log.With(
			zap.Int("n", i+1),
			zap.String("ticker", st.Ticker),
			zap.Int("news", len(news)),
			zap.Float64("newsScore", newsScore),
			zap.Int("social", len(social)),
			zap.Float64("socialScore", socialScore),
			zap.Float64("combined", combined),
		)
		if combined <= 0 {
			stats.NotPositive++
			log.Debug("sentiment not positive")
			continue
		}
		log.Info("sentiment")

		st.NewsSentiment = newsScore
		st.CombinedSentiment = combined
		st.NewsMentions = len(news)
		st.TotalMentions = len(news) + len(social)
		st.SentimentDate = today
		if socialScore != 0 && len(social) > 0 {
			st.SocialSentiment = socialScore
			st.SocialMentions = len(social)
		}
		out = append(out, st)
	}
	stats.Passed = len(out)

	s.log.Info("sentiment filtered",
		zap.Int("total", stats.Total),
		zap.Int("no_news", stats.NoNews),
		zap.Int("not_positive", stats.NotPositive),
		zap.Int("passed", stats.Passed),
	)
	return out, stats, nil
}

// headlines ошибки источника не фатальны: нет заголовков = нет данных.
func (s *Sentiment) headlines(ctx context.Context, tmpl, query string) []string {
	if tmpl == "" {
		return nil
	}
	u := fmt.Sprintf(tmpl, url.QueryEscape(query))

	resp, err := s.http.R().SetContext(ctx).Get(u)
	if err != nil {
		s.log.Debug("feed fetch failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	if resp.IsError() {
		s.log.Debug("feed fetch failed", zap.String("query", query), zap.Int("status", resp.StatusCode()))
		return nil
	}
	titles, err := ParseHeadlines(resp.Body(), s.cfg.MaxItems)
	if err != nil {
		s.log.Debug("feed parse failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	return titles
}

// ParseHeadlines заголовки элементов RSS (item) или Atom (entry), не больше max.
func ParseHeadlines(feed []byte, max int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(feed))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var out []string
	doc.Find("item > title, entry > title").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := strings.TrimSpace(sel.Text())
		t = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(t, "<![CDATA["), "]]>"))
		if t != "" {
			out = append(out, t)
		}
		return max <= 0 || len(out) < max
	})
	return out, nil
}

// LexiconScore (pos-neg)/(pos+neg) по словам из словаря, слово засчитывается
// один раз. Словарное слово совпадает с началом слова заголовка (fall -> falls).
func LexiconScore(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	pos := countMatches(words, positiveWords)
	neg := countMatches(words, negativeWords)
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func countMatches(words, lexicon []string) int {
	n := 0
	for _, l := range lexicon {
		for _, w := range words {
			if strings.HasPrefix(w, l) {
				n++
				break
			}
		}
	}
	return n
}

// ScoreHeadlines среднее по заголовкам, 3 знака. Пусто = 0.
func ScoreHeadlines(titles []string) float64 {
	if len(titles) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range titles {
		sum += LexiconScore(t)
	}
	return helper.Round(sum/float64(len(titles)), 3)
}

// MergeSentiment переносит поля сентимента на технические строки по тикеру.
// Тикеры без сентимента остаются с нулями.
func MergeSentiment(tech, sentiment []models.Stock) []models.Stock {
	byTicker := make(map[string]models.Stock, len(sentiment))
	for _, s := range sentiment {
		byTicker[strings.ToUpper(s.Ticker)] = s
	}

	out := make([]models.Stock, len(tech))
	for i, t := range tech {
		if s, ok := byTicker[strings.ToUpper(t.Ticker)]; ok {
			t.NewsSentiment = s.NewsSentiment
			t.SocialSentiment = s.SocialSentiment
			t.CombinedSentiment = s.CombinedSentiment
			t.NewsMentions = s.NewsMentions
			t.SocialMentions = s.SocialMentions
			t.TotalMentions = s.TotalMentions
			t.SentimentDate = s.SentimentDate
		}
		out[i] = t
	}
	return out
}
