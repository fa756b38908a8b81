package models

import "time"

const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// Session пара токенов, выданная брокером при логине. Передаётся по значению
// в каждый вызов брокера и не меняется после создания.
type Session struct {
	CST           string
	SecurityToken string
}

func (s Session) Valid() bool { return s.CST != "" && s.SecurityToken != "" }

// PositionIntent то, что мы хотим открыть. Уровни nil = не задан.
type PositionIntent struct {
	Symbol    string
	Epic      string
	Direction string // BUY/SELL
	Size      float64
	StopLevel *float64
	TakeLevel *float64
}

// ObservedPosition проекция снапшота открытых позиций брокера.
type ObservedPosition struct {
	DealID         string
	DealReference  string
	Direction      string
	Size           float64
	EntryLevel     float64
	StopLevel      *float64
	TakeLevel      *float64
	UPL            *float64
	CreatedAt      time.Time
	Epic           string
	Symbol         string
	InstrumentName string
	Bid            float64
	Offer          float64
}

// LevelUpdate частичное обновление: nil поля брокер не трогает.
type LevelUpdate struct {
	StopLevel *float64 `json:"stopLevel,omitempty"`
	TakeLevel *float64 `json:"profitLevel,omitempty"`
}

func (u LevelUpdate) Empty() bool { return u.StopLevel == nil && u.TakeLevel == nil }

// DealConfirmation ответ /confirms/{dealReference}.
type DealConfirmation struct {
	DealReference string
	DealID        string
	DealStatus    string // ACCEPTED / REJECTED
	Status        string // OPEN / CLOSED ...
	Reason        string
	Level         float64
}

type CloseRecord struct {
	DealID       string    `json:"deal_id"`
	Epic         string    `json:"epic"`
	Instrument   string    `json:"instrument"`
	Direction    string    `json:"direction"`
	Size         float64   `json:"size"`
	OpenLevel    float64   `json:"open_level"`
	OpenedAt     time.Time `json:"opened_at"`
	BusinessDays int       `json:"business_days"`
	Profit       float64   `json:"profit"`
	Due          bool      `json:"due"`
	Closed       bool      `json:"closed"`
	Error        string    `json:"error,omitempty"`
}

const (
	OpenStatusOpened  = "OPENED"
	OpenStatusSkipped = "SKIPPED"
	OpenStatusFailed  = "FAILED"
)

// OpenRecord итог по одной строке входного файла open.
type OpenRecord struct {
	Ticker        string    `json:"ticker"`
	Epic          string    `json:"epic,omitempty"`
	Name          string    `json:"name,omitempty"`
	Direction     string    `json:"direction,omitempty"`
	Size          float64   `json:"size,omitempty"`
	DesiredStop   *float64  `json:"desired_stop,omitempty"`
	DesiredTake   *float64  `json:"desired_take,omitempty"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	DealReference string    `json:"deal_reference,omitempty"`
	DealID        string    `json:"deal_id,omitempty"`
	Outcome       string    `json:"outcome,omitempty"`
	ObservedStop  *float64  `json:"observed_stop,omitempty"`
	ObservedTake  *float64  `json:"observed_take,omitempty"`
	Attempts      int       `json:"attempts,omitempty"`
	UpdateIssued  bool      `json:"update_issued,omitempty"`
	At            time.Time `json:"at"`
}
