package models

const (
	TradeTP       = "TP"
	TradeSL       = "SL"
	TradeOpen     = "OPEN"
	TradeTimeExit = "TIME_EXIT"
	TradeError    = "ERROR"
)

// TradeResult чем закончился архивный пик: сработал SL/TP, вышли по времени
// или позиция ещё в окне удержания.
type TradeResult struct {
	SourceFile string   `json:"source_file"`
	PurchaseAt string   `json:"purchase_dt"`
	Ticker     string   `json:"ticker"`
	Epic       string   `json:"epic,omitempty"`
	Status     string   `json:"status"`
	HitDate    string   `json:"hit_date,omitempty"`
	Price      float64  `json:"price"`
	SL         float64  `json:"SL,omitempty"`
	TP         float64  `json:"TP,omitempty"`
	Profit     *float64 `json:"profit"`
	Reason     string   `json:"reason,omitempty"`
}
