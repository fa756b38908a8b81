package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"daily_trader/internal/models"

	"github.com/bytedance/sonic"
	"github.com/kaptinlin/jsonrepair"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const systemPrompt = "You are an experienced financial analyst and you answer with JSON only."

const commentPrompt = `We have a list of stocks with their data in JSON:
%s

Task:
1. For every stock add a new field "AIComment" with a short reasoning (2-3 sentences) why it is at its place.
2. Keep all original fields.
3. Return only valid JSON: an array of objects, no text before or after it.`

const scorePrompt = `We have a list of stocks with their data in JSON (they already have AIComment):
%s

Task:
1. For every stock add a new field "AIScore" (0-100), where 100 = top buy and 0 = very unsuitable.
2. Take all available data into account (technical indicators, momentum, comment).
3. Keep all original fields including AIComment.
4. Return only valid JSON: an array of objects.`

var ErrEmptyReply = errors.New("ai returned no usable result")

// Reply поля, которые мы берём из ответа модели. Остальное игнорируем.
type Reply struct {
	Ticker    string   `json:"ticker"`
	AIComment string   `json:"AIComment"`
	AIScore   *float64 `json:"AIScore"`
}

// Analyze два прохода: комментарий, затем оценка. Результат отсортирован по AIScore.
func (c *Client) Analyze(ctx context.Context, stocks []models.Stock) ([]models.Stock, error) {
	c.log.Info("ai comment pass", zap.Int("stocks", len(stocks)))
	commented, err := c.pass(ctx, stocks, commentPrompt, applyComment)
	if err != nil {
		return nil, fmt.Errorf("comment pass: %w", err)
	}

	c.log.Info("ai score pass", zap.Int("stocks", len(commented)))
	scored, err := c.pass(ctx, commented, scorePrompt, applyScore)
	if err != nil {
		return nil, fmt.Errorf("score pass: %w", err)
	}

	SortByAIScore(scored)
	return scored, nil
}

func (c *Client) pass(
	ctx context.Context,
	stocks []models.Stock,
	prompt string,
	apply func(dst *models.Stock, r Reply),
) ([]models.Stock, error) {
	size := c.batchSize
	if size <= 0 || size > len(stocks) {
		size = len(stocks)
	}

	var out []models.Stock
	for start := 0; start < len(stocks); start += size {
		end := min(start+size, len(stocks))
		batch := stocks[start:end]

		payload, err := sonic.ConfigStd.MarshalIndent(batch, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshal batch")
		}
		text, err := c.Chat(ctx, systemPrompt, fmt.Sprintf(prompt, payload))
		if err != nil {
			// один упавший батч не роняет весь проход
			c.log.Warn("ai batch failed", zap.Int("from", start), zap.Int("to", end), zap.Error(err))
			continue
		}
		replies, err := ParseReplies(text)
		if err != nil {
			c.log.Warn("ai reply unparsable", zap.Int("from", start), zap.Error(err))
			continue
		}
		merged := Merge(batch, replies, apply)
		if missed := len(batch) - len(merged); missed > 0 {
			c.log.Warn("ai reply missed stocks", zap.Int("missed", missed))
		}
		out = append(out, merged...)
	}

	if len(out) == 0 {
		return nil, ErrEmptyReply
	}
	return out, nil
}

// ParseReplies разбирает JSON массив из текста модели: как есть, через
// jsonrepair, затем первый фрагмент [...].
func ParseReplies(text string) ([]Reply, error) {
	var out []Reply
	if err := sonic.UnmarshalString(text, &out); err == nil {
		return out, nil
	}

	if repaired, err := jsonrepair.JSONRepair(text); err == nil {
		if err := sonic.UnmarshalString(repaired, &out); err == nil {
			return out, nil
		}
	}

	from := strings.Index(text, "[")
	to := strings.LastIndex(text, "]")
	if from < 0 || to <= from {
		return nil, errors.New("no json array in reply")
	}
	if err := sonic.UnmarshalString(text[from:to+1], &out); err != nil {
		return nil, errors.Wrap(err, "parse json array")
	}
	return out, nil
}

// Merge дописывает поля ответа в исходные записи по тикеру. Записи, которых
// нет в ответе, выпадают.
func Merge(stocks []models.Stock, replies []Reply, apply func(dst *models.Stock, r Reply)) []models.Stock {
	byTicker := make(map[string]Reply, len(replies))
	for _, r := range replies {
		t := strings.ToUpper(strings.TrimSpace(r.Ticker))
		if t != "" {
			byTicker[t] = r
		}
	}

	out := make([]models.Stock, 0, len(stocks))
	for _, s := range stocks {
		r, ok := byTicker[strings.ToUpper(s.Ticker)]
		if !ok {
			continue
		}
		apply(&s, r)
		out = append(out, s)
	}
	return out
}

func applyComment(dst *models.Stock, r Reply) {
	if r.AIComment != "" {
		dst.AIComment = r.AIComment
	}
}

func applyScore(dst *models.Stock, r Reply) {
	if r.AIComment != "" && dst.AIComment == "" {
		dst.AIComment = r.AIComment
	}
	if r.AIScore != nil {
		v := *r.AIScore
		dst.AIScore = &v
	}
}

// SortByAIScore по убыванию, без оценки = 0.
func SortByAIScore(stocks []models.Stock) {
	score := func(s models.Stock) float64 {
		if s.AIScore == nil {
			return 0
		}
		return *s.AIScore
	}
	sort.SliceStable(stocks, func(i, j int) bool { return score(stocks[i]) > score(stocks[j]) })
}
