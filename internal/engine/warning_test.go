package engine

import (
	"context"
	"strings"
	"testing"

	"aipulse/internal/model"
)

func TestEarlyWarningSweep(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		// acme：探针全挂、众包正常 → elevated
		probes: []*model.ProbeEvent{
			{Time: recent(), Provider: "acme", Model: "acme-large", Region: "us-east", ErrorCode: "http-500"},
			{Time: recent(), Provider: "acme", Model: "acme-large", Region: "us-east", ErrorCode: "http-503"},
			// beta：探针与众包同时异常 → high
			{Time: recent(), Provider: "beta", ErrorCode: "timeout"},
		},
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Source: model.SourceCrowd, LatencyMs: f(100), HTTP5xxRate: f(0)},
			{Time: recent(), Provider: "beta", Source: model.SourceCrowd, HTTP429Rate: f(0.5)},
			// calm：一切正常，不产生预警
			{Time: recent(), Provider: "calm", Source: model.SourceCrowd, LatencyMs: f(80), HTTP5xxRate: f(0)},
		},
	}
	e := newTestEngine(t, src)

	warnings, err := e.EarlyWarningSweep(context.Background(), 60)
	if err != nil {
		t.Fatalf("预警扫描失败: %v", err)
	}

	byProvider := make(map[string]model.EarlyWarning, len(warnings))
	for _, w := range warnings {
		byProvider[w.Provider] = w
	}

	if _, ok := byProvider["calm"]; ok {
		t.Error("正常提供商不应出现在预警中")
	}

	acme, ok := byProvider["acme"]
	if !ok {
		t.Fatal("acme预警缺失")
	}
	if acme.Risk != model.RiskElevated {
		t.Errorf("单侧异常期望 elevated, 实际 %s", acme.Risk)
	}
	if acme.SyntheticSignal != model.SignalDown || acme.CrowdSignal != model.SignalHealthy {
		t.Errorf("分信号不符: synthetic=%s crowd=%s", acme.SyntheticSignal, acme.CrowdSignal)
	}
	if len(acme.Models) != 1 || acme.Models[0] != "acme-large" {
		t.Errorf("受影响模型期望 [acme-large], 实际 %v", acme.Models)
	}
	if len(acme.Regions) != 1 || acme.Regions[0] != "us-east" {
		t.Errorf("受影响区域期望 [us-east], 实际 %v", acme.Regions)
	}

	beta, ok := byProvider["beta"]
	if !ok {
		t.Fatal("beta预警缺失")
	}
	if beta.Risk != model.RiskHigh {
		t.Errorf("双侧异常期望 high, 实际 %s", beta.Risk)
	}
}

func TestStalenessSweep(t *testing.T) {
	t.Parallel()

	mkProbes := func(provider string, n int, code string) []*model.ProbeEvent {
		out := make([]*model.ProbeEvent, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, &model.ProbeEvent{Time: recent(), Provider: provider, ErrorCode: code})
		}
		return out
	}

	src := &fakeSource{
		statuses: map[string]*model.OfficialStatus{
			"stale":  {Provider: "stale", Status: "operational"},
			"honest": {Provider: "honest", Status: "degraded"},
			"thin":   {Provider: "thin", Status: "operational"},
			"fine":   {Provider: "fine", Status: "operational"},
		},
	}
	// stale：官方operational但4个探针全5xx → 必须产出信号
	src.probes = append(src.probes, mkProbes("stale", 4, "http-502")...)
	// honest：官方已承认异常 → 跳过
	src.probes = append(src.probes, mkProbes("honest", 6, "http-502")...)
	// thin：实测异常但合并样本<3 → 证据不足跳过
	src.probes = append(src.probes, mkProbes("thin", 2, "http-502")...)
	// fine：官方operational且实测healthy → 无分歧跳过
	src.probes = append(src.probes, mkProbes("fine", 5, "")...)

	e := newTestEngine(t, src)
	signals, err := e.StalenessSweep(context.Background(), 60)
	if err != nil {
		t.Fatalf("滞后扫描失败: %v", err)
	}

	if len(signals) != 1 {
		t.Fatalf("期望仅1条滞后信号, 实际 %d: %+v", len(signals), signals)
	}
	sig := signals[0]
	if sig.Provider != "stale" {
		t.Errorf("期望 stale, 实际 %s", sig.Provider)
	}
	if sig.OfficialStatus != "operational" {
		t.Errorf("官方状态期望 operational, 实际 %s", sig.OfficialStatus)
	}
	if sig.ObservedSignal != model.SignalDown {
		t.Errorf("实测信号期望 down, 实际 %s", sig.ObservedSignal)
	}
	// 4个样本：低于medium下限5 → low，且备注样本偏少、无众包佐证
	if sig.Confidence != model.ConfidenceLow {
		t.Errorf("置信度期望 low, 实际 %s", sig.Confidence)
	}
	if !strings.Contains(sig.Note, "无众包数据佐证") || !strings.Contains(sig.Note, "样本偏少") {
		t.Errorf("备注不符, 实际 %q", sig.Note)
	}
}

func TestStalenessSweepMediumConfidence(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		statuses: map[string]*model.OfficialStatus{
			"stale": {Provider: "stale", Status: "operational"},
		},
	}
	for i := 0; i < 6; i++ {
		src.probes = append(src.probes, &model.ProbeEvent{Time: recent(), Provider: "stale", ErrorCode: "http-502"})
	}

	e := newTestEngine(t, src)
	signals, err := e.StalenessSweep(context.Background(), 60)
	if err != nil {
		t.Fatalf("滞后扫描失败: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("期望1条信号, 实际 %d", len(signals))
	}
	// 6个样本达到下限但仍单一来源：medium
	if signals[0].Confidence != model.ConfidenceMedium {
		t.Errorf("置信度期望 medium, 实际 %s", signals[0].Confidence)
	}
	if strings.Contains(signals[0].Note, "样本偏少") {
		t.Errorf("样本充足不应备注偏少, 实际 %q", signals[0].Note)
	}
}

func TestBuildFingerprint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		summary   model.MetricSummary
		expectSig string
	}{
		{
			name:      "无异常形态",
			summary:   model.MetricSummary{LatencyP95Ms: f(100)},
			expectSig: "acme|none",
		},
		{
			name:      "单一限流标签",
			summary:   model.MetricSummary{HTTP429Rate: f(0.2)},
			expectSig: "acme|throttling",
		},
		{
			name: "多标签按固定顺序",
			summary: model.MetricSummary{
				HTTP429Rate:          f(0.2),
				HTTP5xxRate:          f(0.1),
				LatencyP95Ms:         f(5000),
				StreamDisconnectRate: f(0.01),
			},
			expectSig: "acme|throttling+errors+latency+streaming",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			first := BuildFingerprint("acme", tt.summary)
			second := BuildFingerprint("acme", tt.summary)
			if first.Signature != tt.expectSig {
				t.Errorf("签名期望 %q, 实际 %q", tt.expectSig, first.Signature)
			}
			if first.Signature != second.Signature {
				t.Errorf("签名不确定: %q vs %q", first.Signature, second.Signature)
			}
		})
	}
}
