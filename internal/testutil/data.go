package testutil

import (
	"time"

	"aipulse/internal/model"
)

// F 浮点指针快捷构造
func F(v float64) *float64 {
	return &v
}

// B 布尔指针快捷构造
func B(v bool) *bool {
	return &v
}

// CrowdEvent 构造一条众包遥测事件（时间默认当前）
func CrowdEvent(provider string, mutate func(*model.TelemetryEvent)) *model.TelemetryEvent {
	e := &model.TelemetryEvent{
		Time:     model.JSONTime{Time: time.Now()},
		Provider: provider,
		Source:   model.SourceCrowd,
	}
	if mutate != nil {
		mutate(e)
	}
	return e
}

// AccountEvent 构造一条账号遥测事件
func AccountEvent(provider, accountHash string, mutate func(*model.TelemetryEvent)) *model.TelemetryEvent {
	e := &model.TelemetryEvent{
		Time:        model.JSONTime{Time: time.Now()},
		Provider:    provider,
		Source:      model.SourceAccount,
		AccountHash: accountHash,
	}
	if mutate != nil {
		mutate(e)
	}
	return e
}

// Probe 构造一条探针事件
func Probe(provider, errorCode string, mutate func(*model.ProbeEvent)) *model.ProbeEvent {
	e := &model.ProbeEvent{
		Time:      model.JSONTime{Time: time.Now()},
		Provider:  provider,
		ErrorCode: errorCode,
	}
	if mutate != nil {
		mutate(e)
	}
	return e
}
