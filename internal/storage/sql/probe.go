package sql

import (
	"context"
	dbsql "database/sql"

	"aipulse/internal/config"
	"aipulse/internal/errors"
	"aipulse/internal/model"
)

const probeColumns = `id, time, provider, model, endpoint, region, tier, streaming,
	latency_p50_ms, latency_p95_ms, latency_p99_ms, error_code`

// AddProbe 写入单条探针事件
func (s *SQLStore) AddProbe(ctx context.Context, e *model.ProbeEvent) error {
	query := `INSERT INTO probe_events
		(time, provider, model, endpoint, region, tier, streaming,
		latency_p50_ms, latency_p95_ms, latency_p99_ms, error_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		timeToUnix(e.Time.Time), e.Provider, e.Model, e.Endpoint, e.Region,
		e.Tier, boolToInt(e.Streaming),
		nullableFloat(e.LatencyP50Ms), nullableFloat(e.LatencyP95Ms),
		nullableFloat(e.LatencyP99Ms), e.ErrorCode)
	if err != nil {
		return errors.DBInsertError("probe_events", err)
	}
	return nil
}

// ListProbes 窗口化查询探针事件（降级语义与ListTelemetry一致）
func (s *SQLStore) ListProbes(ctx context.Context, filter *model.EventFilter) ([]*model.ProbeEvent, bool, error) {
	limit := config.DefaultQueryLimit
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	// Source/AccountHash 对探针表无意义，仅应用provider与窗口条件
	wb := NewWhereBuilder()
	if filter != nil {
		if filter.Provider != "" {
			wb.AddCondition("provider = ?", filter.Provider)
		}
		if !filter.Since.IsZero() {
			wb.AddCondition("time >= ?", timeToUnix(filter.Since))
		}
	}
	whereClause, args := wb.BuildWithPrefix("WHERE")
	query := "SELECT " + probeColumns + " FROM probe_events"
	if whereClause != "" {
		query += " " + whereClause
	}
	query += " ORDER BY time DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return s.listProbesDegraded(ctx, filter, limit)
	}
	defer rows.Close()

	events, err := scanProbeRows(rows)
	if err != nil {
		return nil, false, errors.DBQueryError("list probes", err)
	}
	return events, false, nil
}

// listProbesDegraded 降级扫描路径：按写入顺序取最近N条，过滤/排序/截断全部在内存完成
func (s *SQLStore) listProbesDegraded(ctx context.Context, filter *model.EventFilter, limit int) ([]*model.ProbeEvent, bool, error) {
	query := "SELECT " + probeColumns + " FROM probe_events ORDER BY id DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, config.DegradedScanLimit)
	if err != nil {
		return nil, false, errors.DBQueryError("degraded probe scan", err)
	}
	defer rows.Close()

	events, err := scanProbeRows(rows)
	if err != nil {
		return nil, false, errors.DBQueryError("degraded probe scan", err)
	}
	return DegradedProbes(events, filter, limit), true, nil
}

// scanProbeRows 扫描多行探针事件
func scanProbeRows(rows *dbsql.Rows) ([]*model.ProbeEvent, error) {
	var events []*model.ProbeEvent
	for rows.Next() {
		var e model.ProbeEvent
		var ts int64
		var streaming int
		var p50, p95, p99 dbsql.NullFloat64

		if err := rows.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Endpoint, &e.Region,
			&e.Tier, &streaming, &p50, &p95, &p99, &e.ErrorCode); err != nil {
			return nil, err
		}

		e.Time = model.JSONTime{Time: unixToTime(ts)}
		e.Streaming = streaming != 0
		e.LatencyP50Ms = floatPtr(p50)
		e.LatencyP95Ms = floatPtr(p95)
		e.LatencyP99Ms = floatPtr(p99)

		events = append(events, &e)
	}
	return events, rows.Err()
}
