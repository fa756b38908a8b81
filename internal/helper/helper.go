package helper

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Round округляет до places знаков половиной вверх (как round() в отчётах брокера).
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func Round2(v float64) float64 { return Round(v, 2) }

func RoundDownToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Floor(px/tick + 1e-12)
	return steps * tick
}

func RoundUpToTick(px, tick float64) float64 {
	if tick <= 0 {
		return px
	}
	steps := math.Ceil(px/tick - 1e-12)
	return steps * tick
}

// Opposite сторона закрывающего ордера.
func Opposite(direction string) string {
	if strings.EqualFold(direction, "BUY") {
		return "SELL"
	}
	return "BUY"
}

// BusinessDaysBetween считает рабочие дни (пн-пт) в отрезке [from, to]
// включительно и вычитает один, т.е. день открытия не считается.
func BusinessDaysBetween(from, to time.Time) int {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return 0
	}

	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

func Ptr[T any](v T) *T { return &v }

func FormatLevel(p *float64) string {
	if p == nil {
		return "none"
	}
	return decimal.NewFromFloat(*p).String()
}
