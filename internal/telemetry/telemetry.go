package telemetry

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/wordcount/config"
)

// 各组件的 instrumentation scope
const (
	ScopeAggregate = "github.com/BaSui01/wordcount/aggregate"
	ScopeHTTP      = "github.com/BaSui01/wordcount/http"
)

const defaultServiceName = "wordcount"

// 只需重启才会变化的部署参数，作为 resource 属性随 trace/metric 上报
const (
	attrBindAddress  = attribute.Key("wordcount.bind_address")
	attrTLSEnabled   = attribute.Key("wordcount.tls_enabled")
	attrHotReload    = attribute.Key("wordcount.hot_reload")
	attrMaxBodyBytes = attribute.Key("wordcount.max_body_bytes")
)

// =============================================================================
// 📡 Providers
// =============================================================================

// Providers 持有 SDK 的 TracerProvider 与 MeterProvider。
// 遥测关闭时两者为 nil，Tracer 回退到全局 provider，Shutdown 为空操作。
type Providers struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// Init 按服务配置初始化 OTel SDK。遥测关闭时不连接任何外部服务。
func Init(cfg *config.Config, logger *zap.Logger) (*Providers, error) {
	tc := cfg.Telemetry
	if !tc.Enabled {
		logger.Info("telemetry disabled, aggregation spans and instruments are noop")
		return &Providers{}, nil
	}

	ctx := context.Background()

	res, err := newResource(ctx, tc.ServiceName, cfg)
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(tc.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(tc.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	// 父 span 已采样时跟随父决策，保证一次请求的 HTTP span 与聚合 span 一起保留
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tc.SampleRate))),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn("otel export error", zap.Error(err))
	}))

	logger.Info("telemetry initialized",
		zap.String("endpoint", tc.OTLPEndpoint),
		zap.String("service_name", serviceName(tc.ServiceName)),
		zap.Float64("sample_rate", tc.SampleRate),
	)

	return &Providers{tp: tp, mp: mp}, nil
}

// newResource 描述服务实例
func newResource(ctx context.Context, name string, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName(name)),
			semconv.ServiceVersionKey.String(BuildVersion()),
			attrBindAddress.String(cfg.Server.BindAddress),
			attrTLSEnabled.Bool(cfg.Server.TLSCertFile != "" && cfg.Server.TLSKeyFile != ""),
			attrHotReload.Bool(cfg.WordCount.HotReload),
			attrMaxBodyBytes.Int64(cfg.WordCount.MaxBodyBytes),
		),
	)
}

func serviceName(name string) string {
	if name == "" {
		return defaultServiceName
	}
	return name
}

// Enabled reports whether SDK providers were created.
func (p *Providers) Enabled() bool {
	return p != nil && p.tp != nil
}

// Tracer returns a tracer from the SDK provider, or from the global
// provider when telemetry is disabled.
func (p *Providers) Tracer(name string) trace.Tracer {
	if p.Enabled() {
		return p.tp.Tracer(name)
	}
	return otel.Tracer(name)
}

// AggregateTracer 聚合任务使用的 tracer
func (p *Providers) AggregateTracer() trace.Tracer {
	return p.Tracer(ScopeAggregate)
}

// Shutdown 刷新未导出的 span 与指标并关闭 exporter。
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tp != nil {
		if err := p.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.mp != nil {
		if err := p.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// BuildVersion 从构建信息中读取模块版本，取不到时返回 "dev"。
func BuildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
