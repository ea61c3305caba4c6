package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	fieldsKey
)

// Context field names
const (
	FieldRequestID = "request_id"
	FieldTenantID  = "tenant_id"
	FieldUserID    = "user_id"
)

// WithContext returns a new context carrying logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger carried by ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithField records a correlation field (request, tenant or user id) in ctx.
// Every logger obtained through L carries it.
func WithField(ctx context.Context, name, value string) context.Context {
	prev, _ := ctx.Value(fieldsKey).(map[string]string)
	fields := make(map[string]string, len(prev)+1)
	for k, v := range prev {
		fields[k] = v
	}
	fields[name] = value
	return context.WithValue(ctx, fieldsKey, fields)
}

// Field returns a correlation field recorded with WithField
func Field(ctx context.Context, name string) string {
	fields, _ := ctx.Value(fieldsKey).(map[string]string)
	return fields[name]
}

// L returns the context logger enriched with correlation fields and, when a
// span is active, its trace and span ids.
//
//	logger.L(ctx).Info("Process created", zap.String("process_id", id))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)

	var fields []zap.Field
	for _, name := range []string{FieldRequestID, FieldTenantID, FieldUserID} {
		if v := Field(ctx, name); v != "" {
			fields = append(fields, zap.String(name, v))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
