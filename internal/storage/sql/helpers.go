package sql

import (
	"database/sql"
	"time"
)

// timeToUnix 将时间转换为Unix时间戳（秒）
// SQLite和MySQL都存储为BIGINT类型的Unix时间戳
func timeToUnix(t time.Time) int64 {
	return t.Unix()
}

// unixToTime 将Unix时间戳转换为时间
func unixToTime(ts int64) time.Time {
	return time.Unix(ts, 0)
}

// boolToInt 将布尔值转换为整数
// SQLite和MySQL都使用 1=true, 0=false
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableFloat 指针字段转数据库参数（nil → NULL）
func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// nullableBool 布尔指针字段转数据库参数（nil → NULL）
func nullableBool(p *bool) any {
	if p == nil {
		return nil
	}
	return boolToInt(*p)
}

// floatPtr NullFloat64 转指针（NULL → nil）
func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// boolPtr NullInt64 转布尔指针（NULL → nil）
func boolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Int64 != 0
	return &v
}
