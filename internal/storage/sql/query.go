package sql

import (
	"fmt"
	"strings"

	"aipulse/internal/model"
)

// WhereBuilder SQL WHERE 子句构建器
type WhereBuilder struct {
	conditions []string
	args       []any
}

// NewWhereBuilder 创建新的 WHERE 构建器
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		conditions: make([]string, 0),
		args:       make([]any, 0),
	}
}

// AddCondition 添加SQL WHERE条件子句
//
// 【SQL注入防护约束】
//   - condition参数必须是代码中的字符串字面量或常量，禁止拼接用户输入
//   - 用户输入必须通过args参数传递，自动参数化为占位符(?)
//
// 正确示例:
//
//	wb.AddCondition("provider = ?", userInput)  // ✅ 用户输入通过args传递
//
// 错误示例:
//
//	wb.AddCondition("provider = " + userInput)  // ❌ SQL注入风险！
func (wb *WhereBuilder) AddCondition(condition string, args ...any) *WhereBuilder {
	if condition == "" {
		return wb
	}

	wb.conditions = append(wb.conditions, condition)
	wb.args = append(wb.args, args...)
	return wb
}

// ApplyEventFilter 应用事件过滤器，消除重复的过滤逻辑
// 语义必须与降级扫描路径的内存过滤（FilterTelemetry/FilterProbes）完全一致
func (wb *WhereBuilder) ApplyEventFilter(filter *model.EventFilter) *WhereBuilder {
	if filter == nil {
		return wb
	}

	if filter.Provider != "" {
		wb.AddCondition("provider = ?", filter.Provider)
	}
	if filter.Source != "" {
		wb.AddCondition("source = ?", filter.Source)
	}
	if filter.AccountHash != "" {
		wb.AddCondition("account_hash = ?", filter.AccountHash)
	}
	if !filter.Since.IsZero() {
		wb.AddCondition("time >= ?", timeToUnix(filter.Since))
	}
	return wb
}

// Build 构建最终的 WHERE 子句和参数
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", wb.args
	}
	return strings.Join(wb.conditions, " AND "), wb.args
}

// BuildWithPrefix 构建带前缀的 WHERE 子句
func (wb *WhereBuilder) BuildWithPrefix(prefix string) (string, []any) {
	whereClause, args := wb.Build()
	if whereClause == "" {
		return "", args
	}
	return prefix + " " + whereClause, args
}

// QueryBuilder 通用查询构建器
type QueryBuilder struct {
	baseQuery string
	wb        *WhereBuilder
}

// NewQueryBuilder 创建新的查询构建器
func NewQueryBuilder(baseQuery string) *QueryBuilder {
	return &QueryBuilder{
		baseQuery: baseQuery,
		wb:        NewWhereBuilder(),
	}
}

// Where 添加 WHERE 条件
func (qb *QueryBuilder) Where(condition string, args ...any) *QueryBuilder {
	qb.wb.AddCondition(condition, args...)
	return qb
}

// ApplyFilter 应用过滤器
func (qb *QueryBuilder) ApplyFilter(filter *model.EventFilter) *QueryBuilder {
	qb.wb.ApplyEventFilter(filter)
	return qb
}

// WhereIn 添加 IN 条件，自动生成占位符
func (qb *QueryBuilder) WhereIn(column string, values []any) *QueryBuilder {
	if len(values) == 0 {
		// 无值时添加恒为假的条件，确保不返回记录
		qb.wb.AddCondition("1=0")
		return qb
	}
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "?"
	}
	cond := fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
	qb.wb.AddCondition(cond, values...)
	return qb
}

// Build 构建最终查询
func (qb *QueryBuilder) Build() (string, []any) {
	whereClause, args := qb.wb.BuildWithPrefix("WHERE")

	query := qb.baseQuery
	if whereClause != "" {
		query += " " + whereClause
	}

	return query, args
}

// BuildWithSuffix 构建带后缀的查询（如 ORDER BY, LIMIT 等）
func (qb *QueryBuilder) BuildWithSuffix(suffix string) (string, []any) {
	query, args := qb.Build()
	if suffix != "" {
		query += " " + suffix
	}
	return query, args
}
