package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Pipeline запускает шаги по очереди отдельными процессами того же бинаря.
// Первый упавший шаг останавливает весь прогон.
type Pipeline struct {
	Steps  []string
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger

	// Command собирает процесс шага, по умолчанию os.Args[0] <step>.
	Command func(ctx context.Context, step string) *exec.Cmd
}

func NewPipeline(steps []string, log *zap.Logger) *Pipeline {
	return &Pipeline{
		Steps:  steps,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Log:    log.Named("pipeline"),
		Command: func(ctx context.Context, step string) *exec.Cmd {
			return exec.CommandContext(ctx, os.Args[0], step)
		},
	}
}

func (p *Pipeline) Run(ctx context.Context) error {
	for i, step := range p.Steps {
		p.Log.Info("step start", zap.Int("n", i+1), zap.String("step", step))
		started := time.Now()

		cmd := p.Command(ctx, step)
		cmd.Stdout = p.Stdout
		cmd.Stderr = p.Stderr
		if err := cmd.Run(); err != nil {
			p.Log.Error("step failed, pipeline stopped", zap.String("step", step), zap.Error(err))
			return fmt.Errorf("step %s: %w", step, err)
		}
		p.Log.Info("step done", zap.String("step", step), zap.Duration("took", time.Since(started)))
	}
	p.Log.Info("pipeline finished", zap.Int("steps", len(p.Steps)))
	return nil
}
