package reconcile

import (
	"context"
	"time"
)

// Clock источник пауз. В тестах подменяется на фейк без реального сна.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RealClock пауза через time.Timer с учётом ctx.
var RealClock Clock = realClock{}

// PollUntil вызывает fn не более attempts раз с паузой delay между вызовами,
// пока fn не вернёт done. После последней попытки и после успеха пауз нет.
// Возвращает последнее значение fn, число сделанных попыток и ошибку ctx,
// если ожидание было прервано.
func PollUntil[T any](
	ctx context.Context,
	clock Clock,
	attempts int,
	delay time.Duration,
	fn func(ctx context.Context, attempt int) (T, bool),
) (last T, made int, err error) {
	if clock == nil {
		clock = RealClock
	}

	for i := 1; i <= attempts; i++ {
		if err = ctx.Err(); err != nil {
			return last, made, err
		}

		var done bool
		last, done = fn(ctx, i)
		made = i
		if done {
			return last, made, nil
		}

		if i < attempts {
			if err = clock.Sleep(ctx, delay); err != nil {
				return last, made, err
			}
		}
	}
	return last, made, nil
}
