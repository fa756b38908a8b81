package steps

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"daily_trader/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var (
	reportTmpl  = template.Must(template.ParseFS(templatesFS, "templates/report.html"))
	analyzeTmpl = template.Must(template.ParseFS(templatesFS, "templates/analyze.html"))
)

type reportRow struct {
	Rank          int
	Ticker        string
	Name          string
	Price         float64
	RSI           float64
	Volume        float64
	PercentChange float64
	Score         string
	Rating        string
	Class         string
	TP            float64
	SL            float64
	Comment       string
}

type reportData struct {
	Title     string
	Generated time.Time
	Rows      []reportRow
}

// Rating словесная оценка и css класс по AIScore.
func Rating(score *float64) (string, string) {
	switch {
	case score == nil:
		return "n/a", "mid"
	case *score >= 70:
		return "Buy", "good"
	case *score >= 50:
		return "Hold", "mid"
	default:
		return "Avoid", "bad"
	}
}

func RenderReport(w io.Writer, title string, stocks []models.Stock, generated time.Time) error {
	data := reportData{Title: title, Generated: generated, Rows: make([]reportRow, 0, len(stocks))}
	for i, s := range stocks {
		score := "n/a"
		if s.AIScore != nil {
			score = fmt.Sprintf("%.0f", *s.AIScore)
		}
		rating, class := Rating(s.AIScore)
		data.Rows = append(data.Rows, reportRow{
			Rank:          i + 1,
			Ticker:        s.Ticker,
			Name:          s.Name,
			Price:         s.Price,
			RSI:           s.RSI,
			Volume:        s.Volume,
			PercentChange: s.PercentChange,
			Score:         score,
			Rating:        rating,
			Class:         class,
			TP:            s.TP,
			SL:            s.SL,
			Comment:       s.AIComment,
		})
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

type analyzeTrade struct {
	Ticker string
	Status string
	Profit string
	Class  string
}

type analyzeColumn struct {
	PurchaseAt string
	Trades     []analyzeTrade
	// сумма только закрытых по SL/TP
	Sum float64
}

type analyzeData struct {
	Generated time.Time
	Columns   []analyzeColumn
}

func statusClass(status string) string {
	switch status {
	case models.TradeTP:
		return "good"
	case models.TradeOpen:
		return "mid"
	default:
		return "bad"
	}
}

// RenderAnalysis колонка на каждую дату покупки, внизу сумма закрытых сделок.
func RenderAnalysis(w io.Writer, results []models.TradeResult, generated time.Time) error {
	byDate := map[string]*analyzeColumn{}
	for _, r := range results {
		col, ok := byDate[r.PurchaseAt]
		if !ok {
			col = &analyzeColumn{PurchaseAt: r.PurchaseAt}
			byDate[r.PurchaseAt] = col
		}
		profit := "n/a"
		if r.Profit != nil {
			profit = fmt.Sprintf("%.2f", *r.Profit)
			if r.Status == models.TradeTP || r.Status == models.TradeSL {
				col.Sum += *r.Profit
			}
		}
		col.Trades = append(col.Trades, analyzeTrade{
			Ticker: r.Ticker,
			Status: r.Status,
			Profit: profit,
			Class:  statusClass(r.Status),
		})
	}

	data := analyzeData{Generated: generated, Columns: make([]analyzeColumn, 0, len(byDate))}
	for _, col := range byDate {
		data.Columns = append(data.Columns, *col)
	}
	sort.Slice(data.Columns, func(i, j int) bool { return data.Columns[i].PurchaseAt < data.Columns[j].PurchaseAt })

	if err := analyzeTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render analysis: %w", err)
	}
	return nil
}
