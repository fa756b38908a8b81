package tracing

import (
	"context"
	"fmt"

	"daily_trader/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

type Config struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Host        string `mapstructure:"host" yaml:"host"`
	Port        int    `mapstructure:"port" yaml:"port"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// InitTracer ставит глобальный jaeger трейсер. При Enabled=false остаётся
// noop трейсер opentracing и closer ничего не делает.
func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	if !conf.Enabled {
		return opentracing.GlobalTracer(), func() {}, nil
	}

	name := conf.ServiceName
	if name == "" {
		name = "daily_trader"
	}

	cfg := &jCfg.Configuration{
		ServiceName: name,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan открывает дочерний span; finish помечает span ошибкой, если она есть.
func StartSpan(ctx context.Context, operation string) (context.Context, func(err error)) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operation)
	return ctx, func(err error) {
		if err != nil {
			ext.Error.Set(span, true)
			span.LogKV("error", err.Error())
		}
		span.Finish()
	}
}
