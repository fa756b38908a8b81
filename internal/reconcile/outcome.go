package reconcile

import "daily_trader/internal/models"

type Outcome string

const (
	// Verified оба желаемых уровня видны на позиции.
	Verified Outcome = "VERIFIED"
	// PartiallyUpdated исправление отправлено, но подтвердился только один из двух уровней.
	PartiallyUpdated Outcome = "PARTIALLY_UPDATED"
	// NotConfirmed позиция найдена, но уровни так и не совпали.
	NotConfirmed Outcome = "NOT_CONFIRMED"
	// Failed позиция по dealReference ни разу не появилась в снапшоте.
	Failed Outcome = "FAILED"
)

func (o Outcome) String() string { return string(o) }

// OK только Verified считается успешным исходом.
func (o Outcome) OK() bool { return o == Verified }

type Result struct {
	Outcome       Outcome
	DealReference string
	DealID        string
	ObservedStop  *float64
	ObservedTake  *float64
	Attempts      int
	UpdateIssued  bool
	UpdatePayload models.LevelUpdate
	// UpdateErr ошибка PUT, если была. На исход не влияет.
	UpdateErr error
}
