package steps

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"daily_trader/internal/helper"
	"daily_trader/internal/models"
	"daily_trader/internal/modules/config"
	"daily_trader/pkg/jsonfile"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// брокер отдаёт не больше 1000 свечей за запрос
const maxHistoryCandles = 1000

type AnalyzeStats struct {
	Files        int  `json:"files"`
	SkippedFiles int  `json:"skipped_files"`
	TP           int  `json:"tp"`
	SL           int  `json:"sl"`
	Open         int  `json:"open"`
	TimeExit     int  `json:"time_exit"`
	Errors       int  `json:"errors"`
	Stopped      bool `json:"stopped"`
}

func (s *AnalyzeStats) count(status string) {
	switch status {
	case models.TradeTP:
		s.TP++
	case models.TradeSL:
		s.SL++
	case models.TradeOpen:
		s.Open++
	case models.TradeTimeExit:
		s.TimeExit++
	default:
		s.Errors++
	}
}

// Analyzer проверяет архивные пики: сработал ли SL или TP в окне удержания.
type Analyzer struct {
	prices  PriceSource
	cfg     config.Analyze
	limiter *rate.Limiter
	now     func() time.Time
	log     *zap.Logger
}

func NewAnalyzer(cfg *config.Config, prices PriceSource, log *zap.Logger) *Analyzer {
	ac := cfg.Analyze
	if ac.MaxHoldDays <= 0 {
		ac.MaxHoldDays = 10
	}
	if ac.BanLimit <= 0 {
		ac.BanLimit = 3
	}
	limit := rate.Inf
	if ac.Delay > 0 {
		limit = rate.Every(ac.Delay)
	}
	return &Analyzer{
		prices:  prices,
		cfg:     ac,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		log:     log.Named("analyze"),
	}
}

// Run файлы historyDir/<время>.json по порядку имён. После BanLimit ошибок
// загрузки подряд разбор останавливается, собранное возвращается.
func (a *Analyzer) Run(ctx context.Context, sess models.Session, historyDir string) ([]models.TradeResult, AnalyzeStats, error) {
	var stats AnalyzeStats

	files, err := filepath.Glob(filepath.Join(historyDir, "*.json"))
	if err != nil {
		return nil, stats, fmt.Errorf("list history: %w", err)
	}
	sort.Strings(files)
	stats.Files = len(files)

	results := []models.TradeResult{}
	failures := 0

files:
	for _, path := range files {
		name := filepath.Base(path)
		purchase, err := time.ParseInLocation(archiveLayout, strings.TrimSuffix(name, ".json"), time.Local)
		if err != nil {
			a.log.Warn("unexpected history file name, skipped", zap.String("file", name))
			stats.SkippedFiles++
			continue
		}

		var trades []models.Stock
		if err := jsonfile.Read(path, &trades); err != nil {
			a.log.Warn("history file unreadable, skipped", zap.String("file", name), zap.Error(err))
			stats.SkippedFiles++
			continue
		}

		for _, trade := range trades {
			if err := a.limiter.Wait(ctx); err != nil {
				return results, stats, err
			}

			res, fetchFailed := a.evaluate(ctx, sess, name, purchase, trade)
			results = append(results, res)
			stats.count(res.Status)

			log := a.log.With(
				zap.String("file", name),
				zap.String("ticker", res.Ticker),
				zap.String("status", res.Status),
			)
			if !fetchFailed {
				failures = 0
				log.Debug("trade evaluated")
				continue
			}

			failures++
			log.Warn("history fetch failed", zap.String("reason", res.Reason), zap.Int("inRow", failures))
			if failures >= a.cfg.BanLimit {
				a.log.Warn("price history keeps failing, stopping", zap.Int("limit", a.cfg.BanLimit))
				stats.Stopped = true
				break files
			}
		}
	}

	a.log.Info("history analyzed",
		zap.Int("files", stats.Files),
		zap.Int("tp", stats.TP),
		zap.Int("sl", stats.SL),
		zap.Int("open", stats.Open),
		zap.Int("time_exit", stats.TimeExit),
		zap.Int("errors", stats.Errors),
	)
	return results, stats, nil
}

func (a *Analyzer) evaluate(
	ctx context.Context,
	sess models.Session,
	file string,
	purchase time.Time,
	trade models.Stock,
) (models.TradeResult, bool) {
	res := models.TradeResult{
		SourceFile: file,
		PurchaseAt: purchase.Format(time.DateTime),
		Ticker:     trade.Ticker,
		Epic:       trade.Epic,
		Price:      trade.Price,
		SL:         trade.SL,
		TP:         trade.TP,
		Status:     models.TradeError,
	}
	if trade.Epic == "" {
		res.Reason = "no epic"
		return res, false
	}

	days := int(a.now().Sub(purchase).Hours()/24) + 2
	days = min(max(days, 1), maxHistoryCandles)

	candles, err := a.prices.Prices(ctx, sess, trade.Epic, days)
	if err != nil {
		res.Reason = err.Error()
		return res, true
	}
	bars := CandlesSince(candles, purchase)
	if len(bars) == 0 {
		res.Reason = "no price history"
		return res, true
	}

	status, hit, profit := EvaluateTrade(bars, trade.Price, trade.SL, trade.TP, a.cfg.MaxHoldDays)
	res.Status = status
	res.Profit = helper.Ptr(profit)
	if !hit.IsZero() {
		res.HitDate = hit.Format(time.DateOnly)
	}
	return res, false
}

// CandlesSince дневные свечи начиная с дня покупки включительно.
func CandlesSince(candles []models.Candle, purchase time.Time) []models.Candle {
	from := time.Date(purchase.Year(), purchase.Month(), purchase.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if !c.Time.Before(from) {
			out = append(out, c)
		}
	}
	return out
}

// EvaluateTrade первые maxHold свечей: SL проверяется раньше TP.
// Не сработало: меньше maxHold свечей = OPEN по последнему close,
// иначе TIME_EXIT по close свечи maxHold (или последней). Профит на одну акцию, 2 знака.
func EvaluateTrade(bars []models.Candle, entry, sl, tp float64, maxHold int) (string, time.Time, float64) {
	for i, b := range bars {
		if i >= maxHold {
			break
		}
		if sl > 0 && b.Low <= sl {
			return models.TradeSL, b.Time, helper.Round2(sl - entry)
		}
		if tp > 0 && b.High >= tp {
			return models.TradeTP, b.Time, helper.Round2(tp - entry)
		}
	}

	if len(bars) < maxHold {
		last := bars[len(bars)-1]
		return models.TradeOpen, time.Time{}, helper.Round2(last.Close - entry)
	}

	exit := bars[len(bars)-1]
	if len(bars) > maxHold {
		exit = bars[maxHold]
	}
	return models.TradeTimeExit, exit.Time, helper.Round2(exit.Close - entry)
}
