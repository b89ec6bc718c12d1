package sql

import (
	"context"
	dbsql "database/sql"

	"aipulse/internal/config"
	"aipulse/internal/errors"
	"aipulse/internal/model"
)

const telemetryColumns = `id, time, provider, model, endpoint, region, tier, streaming,
	latency_ms, http_5xx_rate, http_429_rate, retry_after_seconds, throttle_reason,
	tokens_per_sec, refusal_rate, tool_success_rate, schema_valid_rate,
	completion_tokens, stream_disconnected, source, client_hash, account_hash`

const telemetryInsert = `INSERT INTO events
	(time, provider, model, endpoint, region, tier, streaming,
	latency_ms, http_5xx_rate, http_429_rate, retry_after_seconds, throttle_reason,
	tokens_per_sec, refusal_rate, tool_success_rate, schema_valid_rate,
	completion_tokens, stream_disconnected, source, client_hash, account_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// AddTelemetry 写入单条遥测事件
func (s *SQLStore) AddTelemetry(ctx context.Context, e *model.TelemetryEvent) error {
	_, err := s.db.ExecContext(ctx, telemetryInsert, telemetryArgs(e)...)
	if err != nil {
		return errors.DBInsertError("events", err)
	}
	return nil
}

// BatchAddTelemetry 批量写入遥测事件（单事务，降低fsync开销）
func (s *SQLStore) BatchAddTelemetry(ctx context.Context, events []*model.TelemetryEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DBInsertError("events", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, telemetryInsert)
	if err != nil {
		return errors.DBInsertError("events", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, telemetryArgs(e)...); err != nil {
			return errors.DBInsertError("events", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DBInsertError("events", err)
	}
	return nil
}

// ListTelemetry 窗口化查询遥测事件
// 第二个返回值表示是否走了降级扫描路径：索引查询失败时回落为
// 按写入顺序取最近N条再内存过滤，结果可用但必须如实标注
func (s *SQLStore) ListTelemetry(ctx context.Context, filter *model.EventFilter) ([]*model.TelemetryEvent, bool, error) {
	limit := config.DefaultQueryLimit
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	query, args := NewQueryBuilder("SELECT "+telemetryColumns+" FROM events").
		ApplyFilter(filter).
		BuildWithSuffix("ORDER BY time DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return s.listTelemetryDegraded(ctx, filter, limit)
	}
	defer rows.Close()

	events, err := scanTelemetryRows(rows)
	if err != nil {
		return nil, false, errors.DBQueryError("list telemetry", err)
	}
	return events, false, nil
}

// listTelemetryDegraded 降级扫描路径：按写入顺序取最近N条，过滤/排序/截断全部在内存完成
func (s *SQLStore) listTelemetryDegraded(ctx context.Context, filter *model.EventFilter, limit int) ([]*model.TelemetryEvent, bool, error) {
	query := "SELECT " + telemetryColumns + " FROM events ORDER BY id DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, config.DegradedScanLimit)
	if err != nil {
		return nil, false, errors.DBQueryError("degraded telemetry scan", err)
	}
	defer rows.Close()

	events, err := scanTelemetryRows(rows)
	if err != nil {
		return nil, false, errors.DBQueryError("degraded telemetry scan", err)
	}
	return DegradedTelemetry(events, filter, limit), true, nil
}

// telemetryArgs 事件字段转插入参数（指针字段nil → NULL）
func telemetryArgs(e *model.TelemetryEvent) []any {
	return []any{
		timeToUnix(e.Time.Time), e.Provider, e.Model, e.Endpoint, e.Region,
		e.Tier, boolToInt(e.Streaming),
		nullableFloat(e.LatencyMs), nullableFloat(e.HTTP5xxRate), nullableFloat(e.HTTP429Rate),
		nullableFloat(e.RetryAfterSeconds), e.ThrottleReason,
		nullableFloat(e.TokensPerSec), nullableFloat(e.RefusalRate),
		nullableFloat(e.ToolSuccessRate), nullableFloat(e.SchemaValidRate),
		nullableFloat(e.CompletionTokens), nullableBool(e.StreamDisconnected),
		e.Source, e.ClientHash, e.AccountHash,
	}
}

// scanTelemetryRows 扫描多行遥测事件（NULL列还原为nil指针）
func scanTelemetryRows(rows *dbsql.Rows) ([]*model.TelemetryEvent, error) {
	var events []*model.TelemetryEvent
	for rows.Next() {
		var e model.TelemetryEvent
		var ts int64
		var streaming int
		var latency, r5xx, r429, retryAfter, tps, refusal, tool, schema, completion dbsql.NullFloat64
		var disconnected dbsql.NullInt64

		if err := rows.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Endpoint, &e.Region,
			&e.Tier, &streaming,
			&latency, &r5xx, &r429, &retryAfter, &e.ThrottleReason,
			&tps, &refusal, &tool, &schema,
			&completion, &disconnected, &e.Source, &e.ClientHash, &e.AccountHash); err != nil {
			return nil, err
		}

		e.Time = model.JSONTime{Time: unixToTime(ts)}
		e.Streaming = streaming != 0
		e.LatencyMs = floatPtr(latency)
		e.HTTP5xxRate = floatPtr(r5xx)
		e.HTTP429Rate = floatPtr(r429)
		e.RetryAfterSeconds = floatPtr(retryAfter)
		e.TokensPerSec = floatPtr(tps)
		e.RefusalRate = floatPtr(refusal)
		e.ToolSuccessRate = floatPtr(tool)
		e.SchemaValidRate = floatPtr(schema)
		e.CompletionTokens = floatPtr(completion)
		e.StreamDisconnected = boolPtr(disconnected)

		events = append(events, &e)
	}
	return events, rows.Err()
}
