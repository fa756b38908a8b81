package steps

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shellPipeline(steps []string, scripts map[string]string, out *bytes.Buffer) (*Pipeline, *[]string) {
	var ran []string
	p := NewPipeline(steps, zap.NewNop())
	p.Stdout = out
	p.Stderr = out
	p.Command = func(ctx context.Context, step string) *exec.Cmd {
		ran = append(ran, step)
		return exec.CommandContext(ctx, "sh", "-c", scripts[step])
	}
	return p, &ran
}

func TestPipelineRunsAllSteps(t *testing.T) {
	var out bytes.Buffer
	p, ran := shellPipeline([]string{"a", "b"}, map[string]string{"a": "echo A", "b": "echo B"}, &out)

	require.NoError(t, p.Run(t.Context()))
	assert.Equal(t, []string{"a", "b"}, *ran)
	assert.Equal(t, "A\nB\n", out.String())
}

func TestPipelineStopsOnFirstFailure(t *testing.T) {
	var out bytes.Buffer
	p, ran := shellPipeline([]string{"a", "bad", "c"}, map[string]string{"a": "true", "bad": "exit 3", "c": "echo C"}, &out)

	err := p.Run(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step bad")
	assert.Equal(t, []string{"a", "bad"}, *ran)
	assert.NotContains(t, out.String(), "C")
}
