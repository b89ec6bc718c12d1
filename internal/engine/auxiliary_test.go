package engine

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"aipulse/internal/model"
)

func TestRateLimitSegments(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Model: "acme-large", Region: "us-east", Tier: "pro",
				Source: model.SourceCrowd, HTTP429Rate: f(0.2), TokensPerSec: f(40), RetryAfterSeconds: f(2), ThrottleReason: "tpm"},
			{Time: recent(), Provider: "acme", Model: "acme-large", Region: "us-east", Tier: "pro",
				Source: model.SourceCrowd, HTTP429Rate: f(0.4), TokensPerSec: f(60), RetryAfterSeconds: f(6), ThrottleReason: "rpm"},
			{Time: recent(), Provider: "acme", Model: "acme-mini", Region: "eu-west", Tier: "free",
				Source: model.SourceCrowd, HTTP429Rate: f(0.1), ThrottleReason: "rpm"},
			// 账号来源事件不参与众包分段
			{Time: recent(), Provider: "acme", Model: "acme-large", Region: "us-east", Tier: "pro",
				Source: model.SourceAccount, HTTP429Rate: f(1.0)},
		},
	}
	e := newTestEngine(t, src)

	segments, err := e.RateLimitSegments(context.Background(), "acme", 60)
	if err != nil {
		t.Fatalf("分段分析失败: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("期望2个分段, 实际 %d", len(segments))
	}

	// 输出按 模型→区域→档位 排序
	if segments[0].Model != "acme-large" || segments[1].Model != "acme-mini" {
		t.Errorf("分段顺序不符: %s, %s", segments[0].Model, segments[1].Model)
	}

	large := segments[0]
	if large.SampleCount != 2 {
		t.Errorf("样本量期望 2, 实际 %d", large.SampleCount)
	}
	if large.HTTP429Rate == nil || math.Abs(*large.HTTP429Rate-0.3) > 1e-9 {
		t.Errorf("429均值期望 0.3, 实际 %v", large.HTTP429Rate)
	}
	if large.MeanTokensPerSec == nil || *large.MeanTokensPerSec != 50 {
		t.Errorf("吞吐均值期望 50, 实际 %v", large.MeanTokensPerSec)
	}
	if large.RetryAfterP95 == nil || *large.RetryAfterP95 != 6 {
		t.Errorf("retry-after p95期望 6, 实际 %v", large.RetryAfterP95)
	}
}

func TestTopReasons(t *testing.T) {
	t.Parallel()

	counts := map[string]int{
		"tpm":        5,
		"rpm":        5,
		"concurrent": 2,
		"quota":      1,
	}
	got := topReasons(counts, 3)
	// 频次相同按字典序，保证确定性
	expect := []string{"rpm", "tpm", "concurrent"}
	if len(got) != 3 || got[0] != expect[0] || got[1] != expect[1] || got[2] != expect[2] {
		t.Errorf("期望 %v, 实际 %v", expect, got)
	}
}

func TestThroughputBaseline(t *testing.T) {
	t.Parallel()

	old := model.JSONTime{Time: time.Now().Add(-48 * time.Hour)}
	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Model: "acme-large", Source: model.SourceCrowd, TokensPerSec: f(50)},
			{Time: old, Provider: "acme", Model: "acme-large", Source: model.SourceCrowd, TokensPerSec: f(100)},
			// 其他模型不参与
			{Time: recent(), Provider: "acme", Model: "acme-mini", Source: model.SourceCrowd, TokensPerSec: f(999)},
		},
	}
	e := newTestEngine(t, src)

	tb, err := e.ThroughputBaseline(context.Background(), "acme", "acme-large", "", 60, 7)
	if err != nil {
		t.Fatalf("基线对比失败: %v", err)
	}

	if tb.CurrentSamples != 1 || tb.BaselineSamples != 2 {
		t.Fatalf("样本量不符: current=%d baseline=%d", tb.CurrentSamples, tb.BaselineSamples)
	}
	if tb.CurrentMeanTPS == nil || *tb.CurrentMeanTPS != 50 {
		t.Errorf("当前均值期望 50, 实际 %v", tb.CurrentMeanTPS)
	}
	if tb.BaselineMeanTPS == nil || *tb.BaselineMeanTPS != 75 {
		t.Errorf("基线均值期望 75, 实际 %v", tb.BaselineMeanTPS)
	}
	if tb.RelativeDelta == nil || math.Abs(*tb.RelativeDelta-(-1.0/3.0)) > 1e-9 {
		t.Errorf("相对差值期望 -0.333, 实际 %v", tb.RelativeDelta)
	}
}

func TestThroughputBaselineNoCurrentData(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: model.JSONTime{Time: time.Now().Add(-48 * time.Hour)},
				Provider: "acme", Source: model.SourceCrowd, TokensPerSec: f(100)},
		},
	}
	e := newTestEngine(t, src)

	tb, err := e.ThroughputBaseline(context.Background(), "acme", "", "", 60, 7)
	if err != nil {
		t.Fatalf("基线对比失败: %v", err)
	}
	// 当前窗口无数据：均值与差值保持nil，不伪造零
	if tb.CurrentMeanTPS != nil {
		t.Errorf("当前均值应为nil, 实际 %v", tb.CurrentMeanTPS)
	}
	if tb.RelativeDelta != nil {
		t.Errorf("差值应为nil, 实际 %v", tb.RelativeDelta)
	}
	if tb.BaselineSamples != 1 {
		t.Errorf("基线样本期望 1, 实际 %d", tb.BaselineSamples)
	}
}

func TestBehaviorSummary(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Model: "acme-large", Source: model.SourceCrowd,
				RefusalRate: f(0.1), ToolSuccessRate: f(0.9), CompletionTokens: f(500)},
			{Time: recent(), Provider: "acme", Model: "acme-large", Source: model.SourceCrowd,
				RefusalRate: f(0.3), CompletionTokens: f(700)},
		},
	}
	e := newTestEngine(t, src)

	bs, err := e.BehaviorSummary(context.Background(), "acme", "acme-large", 60)
	if err != nil {
		t.Fatalf("行为聚合失败: %v", err)
	}
	if bs.RefusalRate == nil || math.Abs(*bs.RefusalRate-0.2) > 1e-9 {
		t.Errorf("拒答率期望 0.2, 实际 %v", bs.RefusalRate)
	}
	// 只有一条携带工具成功率：均值对存在值计算
	if bs.ToolSuccessRate == nil || *bs.ToolSuccessRate != 0.9 {
		t.Errorf("工具成功率期望 0.9, 实际 %v", bs.ToolSuccessRate)
	}
	if bs.SchemaValidRate != nil {
		t.Errorf("无样本字段应为nil, 实际 %v", bs.SchemaValidRate)
	}
	if bs.MeanCompletionTokens == nil || *bs.MeanCompletionTokens != 600 {
		t.Errorf("补全长度均值期望 600, 实际 %v", bs.MeanCompletionTokens)
	}
}

func TestAskStatus(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Source: model.SourceCrowd, LatencyMs: f(1200), HTTP429Rate: f(0.02)},
			{Time: recent(), Provider: "acme", Source: model.SourceCrowd, LatencyMs: f(1400), HTTP429Rate: f(0.04)},
		},
	}
	e := newTestEngine(t, src)

	t.Run("延迟问题代入p95", func(t *testing.T) {
		t.Parallel()
		ans, err := e.AskStatus(context.Background(), "acme", "what is the latency like?", 60)
		if err != nil {
			t.Fatalf("问答失败: %v", err)
		}
		if !strings.Contains(ans.Answer, "p95延迟") || !strings.Contains(ans.Answer, "1400ms") {
			t.Errorf("答案不符, 实际 %q", ans.Answer)
		}
	})

	t.Run("限流问题代入429率", func(t *testing.T) {
		t.Parallel()
		ans, err := e.AskStatus(context.Background(), "acme", "are we hitting rate limits?", 60)
		if err != nil {
			t.Fatalf("问答失败: %v", err)
		}
		if !strings.Contains(ans.Answer, "429限流率") || !strings.Contains(ans.Answer, "3.0%") {
			t.Errorf("答案不符, 实际 %q", ans.Answer)
		}
	})

	t.Run("未命中关键词回答总体信号", func(t *testing.T) {
		t.Parallel()
		ans, err := e.AskStatus(context.Background(), "acme", "is everything ok?", 60)
		if err != nil {
			t.Fatalf("问答失败: %v", err)
		}
		if ans.Signal != model.SignalHealthy {
			t.Errorf("信号期望 healthy, 实际 %s", ans.Signal)
		}
		if !strings.Contains(ans.Answer, "healthy") {
			t.Errorf("答案应含信号, 实际 %q", ans.Answer)
		}
		if ans.Receipts.SampleCount != 2 {
			t.Errorf("回执样本量期望 2, 实际 %d", ans.Receipts.SampleCount)
		}
	})
}
