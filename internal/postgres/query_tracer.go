package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

// QueryTracer logs one query with its duration. Byte parameters such as raw
// upload content and encoded reports are logged by size only.
type QueryTracer struct {
	logger    *logger.Logger
	requestID string
	query     string
	args      []interface{}
	start     time.Time
}

func NewQueryTracer(ctx context.Context, logger *logger.Logger, query string, args []interface{}) *QueryTracer {
	return &QueryTracer{
		logger:    logger,
		requestID: types.GetRequestID(ctx),
		query:     compactQuery(query),
		args:      args,
		start:     time.Now(),
	}
}

// Done logs the outcome. sql.ErrNoRows is a miss, not a failure.
func (qt *QueryTracer) Done(err error) {
	fields := []interface{}{
		"duration_ms", time.Since(qt.start).Milliseconds(),
		"query", qt.query,
		"params", redactArgs(qt.args),
		"request_id", qt.requestID,
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		fields = append(fields, "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
		return
	}
	qt.logger.Debugw("database query completed", fields...)
}

func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func redactArgs(args []interface{}) []string {
	return lo.Map(args, func(arg interface{}, _ int) string {
		if b, ok := arg.([]byte); ok {
			return fmt.Sprintf("<%d bytes>", len(b))
		}
		return fmt.Sprintf("%v", arg)
	})
}

// TracedQuerier logs every query run through the wrapped Querier
type TracedQuerier struct {
	Querier
	logger *logger.Logger
}

func NewTracedQuerier(q Querier, logger *logger.Logger) *TracedQuerier {
	return &TracedQuerier{
		Querier: q,
		logger:  logger,
	}
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	tracer := NewQueryTracer(ctx, tq.logger, query, args)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	tracer.Done(err)
	return result, err
}

func (tq *TracedQuerier) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	tracer := NewQueryTracer(ctx, tq.logger, query, args)
	row := tq.Querier.QueryRowxContext(ctx, query, args...)
	tracer.Done(row.Err())
	return row
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := NewQueryTracer(ctx, tq.logger, query, args)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := NewQueryTracer(ctx, tq.logger, query, args)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}
