package util

import "strings"

// ParseBool 解析查询参数中的布尔表示（大小写不敏感，容忍两侧空白）
// 返回 (value, ok)：ok 表示输入是否为可识别的布尔值
func ParseBool(raw string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// ParseBoolDefault 解析布尔字符串，无法识别时返回默认值
func ParseBoolDefault(raw string, defaultVal bool) bool {
	if val, ok := ParseBool(raw); ok {
		return val
	}
	return defaultVal
}
