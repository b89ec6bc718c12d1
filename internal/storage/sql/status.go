package sql

import (
	"context"
	dbsql "database/sql"

	"aipulse/internal/errors"
	"aipulse/internal/model"
)

// UpsertOfficialStatus 写入/更新官方状态页快照（每个提供商一行）
// REPLACE INTO 在 SQLite 和 MySQL 下语义一致，避免方言分叉
func (s *SQLStore) UpsertOfficialStatus(ctx context.Context, st *model.OfficialStatus) error {
	query := `REPLACE INTO official_status (provider, status, description, fetched_at)
		VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		st.Provider, st.Status, st.Description, timeToUnix(st.FetchedAt.Time))
	if err != nil {
		return errors.DBInsertError("official_status", err)
	}

	// 状态变更后触发异步Redis快照同步
	s.triggerRedisSync()
	return nil
}

// GetOfficialStatus 按提供商查询官方状态快照，无记录时返回 (nil, nil)
func (s *SQLStore) GetOfficialStatus(ctx context.Context, provider string) (*model.OfficialStatus, error) {
	query := `SELECT provider, status, description, fetched_at
		FROM official_status WHERE provider = ?`
	row := s.db.QueryRowContext(ctx, query, provider)

	st, err := scanOfficialStatus(row)
	if err == dbsql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DBQueryError("get official status", err)
	}
	return st, nil
}

// ListOfficialStatuses 列出所有提供商的官方状态快照
func (s *SQLStore) ListOfficialStatuses(ctx context.Context) ([]*model.OfficialStatus, error) {
	query := `SELECT provider, status, description, fetched_at
		FROM official_status ORDER BY provider`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DBQueryError("list official statuses", err)
	}
	defer rows.Close()

	var statuses []*model.OfficialStatus
	for rows.Next() {
		st, err := scanOfficialStatus(rows)
		if err != nil {
			return nil, errors.DBQueryError("list official statuses", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// scanOfficialStatus 扫描单行官方状态（兼容 Row 和 Rows）
func scanOfficialStatus(scanner interface{ Scan(...any) error }) (*model.OfficialStatus, error) {
	var st model.OfficialStatus
	var fetchedAt int64
	if err := scanner.Scan(&st.Provider, &st.Status, &st.Description, &fetchedAt); err != nil {
		return nil, err
	}
	st.FetchedAt = model.JSONTime{Time: unixToTime(fetchedAt)}
	return &st, nil
}
