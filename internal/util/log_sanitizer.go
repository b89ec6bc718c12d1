package util

import (
	"log"
	"strings"
	"unicode"

	"aipulse/internal/config"
)

// 摄取载荷里的 provider/model/错误描述等字段会进入日志，
// 必须先消毒：换行类字符转义为可见形式，其余控制字符丢弃，超长截断

// SanitizeLogMessage 消毒单条日志消息
func SanitizeLogMessage(msg string) string {
	if msg == "" {
		return ""
	}

	msg = strings.ReplaceAll(msg, "\n", "\\n")
	msg = strings.ReplaceAll(msg, "\r", "\\r")
	msg = strings.ReplaceAll(msg, "\t", "\\t")

	msg = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == ' ' {
			return r
		}
		return -1
	}, msg)

	if len(msg) > config.LogMaxMessageLength {
		msg = msg[:config.LogMaxMessageLength] + "...[truncated]"
	}

	return msg
}

// SanitizeError 消毒error的Error()输出
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeLogMessage(err.Error())
}

// sanitizeArgs 统一消毒可变参数中的字符串与错误
func sanitizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			out[i] = SanitizeLogMessage(v)
		case error:
			out[i] = SanitizeError(v)
		default:
			out[i] = v
		}
	}
	return out
}

// SafePrintf 替代 log.Printf，参数先消毒再落日志
func SafePrintf(format string, args ...any) {
	log.Printf(format, sanitizeArgs(args)...)
}

// SafePrint 替代 log.Print，参数先消毒再落日志
func SafePrint(args ...any) {
	log.Print(sanitizeArgs(args)...)
}
