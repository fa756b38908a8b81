package models

// Stock запись, которая идёт через все шаги пайплайна. Каждый шаг читает
// файл предыдущего, дописывает свои поля и пишет следующий файл.
type Stock struct {
	Ticker string  `json:"ticker"`
	Name   string  `json:"name,omitempty"`
	Epic   string  `json:"epic,omitempty"`
	Price  float64 `json:"price"`
	Status string  `json:"market_status,omitempty"`
	Sector string  `json:"sector,omitempty"`

	// технический фильтр
	RSI            float64 `json:"RSI,omitempty"`
	MACD           float64 `json:"MACD,omitempty"`
	MACDSignal     float64 `json:"MACD_signal,omitempty"`
	EMA20          float64 `json:"EMA20,omitempty"`
	Volume         float64 `json:"volume,omitempty"`
	PercentChange  float64 `json:"percent_change,omitempty"`
	Momentum       float64 `json:"momentum,omitempty"`
	BuyScore       float64 `json:"buy_score,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`

	// сентимент заголовков
	NewsSentiment     float64 `json:"news_sentiment,omitempty"`
	SocialSentiment   float64 `json:"social_sentiment,omitempty"`
	CombinedSentiment float64 `json:"combined_sentiment,omitempty"`
	NewsMentions      int     `json:"news_mentions,omitempty"`
	SocialMentions    int     `json:"social_mentions,omitempty"`
	TotalMentions     int     `json:"total_mentions,omitempty"`
	SentimentDate     string  `json:"sentiment_date,omitempty"`

	// ранжирование
	Score float64 `json:"score,omitempty"`

	// AI
	AIComment string   `json:"AIComment,omitempty"`
	AIScore   *float64 `json:"AIScore,omitempty"`

	// уровни
	SL   float64 `json:"SL,omitempty"`
	TP   float64 `json:"TP,omitempty"`
	SL10 float64 `json:"SL10,omitempty"`
	TP10 float64 `json:"TP10,omitempty"`

	// нормализация
	Factor *float64 `json:"Normalize,omitempty"`
}
