package reconcile

import (
	"math"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultDelay       = 1500 * time.Millisecond
)

// Policy сколько раз и как часто опрашивать брокера и как сравнивать уровни.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Equal       func(observed, desired float64) bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Equal:       ExactEqual,
	}
}

// NewPolicy политика из конфига. tolerance <= 0 = точное сравнение.
func NewPolicy(maxAttempts int, delay time.Duration, tolerance float64) Policy {
	p := Policy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Equal:       WithinTolerance(tolerance),
	}
	return p.normalized()
}

func ExactEqual(observed, desired float64) bool { return observed == desired }

func WithinTolerance(tol float64) func(observed, desired float64) bool {
	if tol <= 0 {
		return ExactEqual
	}
	return func(observed, desired float64) bool {
		return math.Abs(observed-desired) <= tol
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Equal == nil {
		p.Equal = ExactEqual
	}
	return p
}

// satisfied отсутствующий желаемый уровень всегда удовлетворён,
// отсутствующий наблюдаемый при заданном желаемом нет.
func (p Policy) satisfied(observed, desired *float64) bool {
	if desired == nil {
		return true
	}
	if observed == nil {
		return false
	}
	return p.Equal(*observed, *desired)
}
