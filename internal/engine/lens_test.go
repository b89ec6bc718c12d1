package engine

import (
	"context"
	"testing"

	"aipulse/internal/model"
)

func TestComposeLensesIndependence(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Source: model.SourceCrowd, LatencyMs: f(5000)},
			{Time: recent(), Provider: "acme", Source: model.SourceCrowd, LatencyMs: f(5200)},
		},
		probes: []*model.ProbeEvent{
			{Time: recent(), Provider: "acme", LatencyP95Ms: f(200)},
			{Time: recent(), Provider: "acme", LatencyP95Ms: f(220)},
		},
	}
	e := newTestEngine(t, src)

	set, err := e.ComposeLenses(context.Background(), model.Scope{Provider: "acme"}, 60)
	if err != nil {
		t.Fatalf("合成透镜失败: %v", err)
	}

	// 众包延迟异常、探针正常：两个透镜独立评分，不互相污染
	if set.Crowd.Signal != model.SignalDegraded {
		t.Errorf("crowd期望 degraded, 实际 %s", set.Crowd.Signal)
	}
	if set.Synthetic.Signal != model.SignalHealthy {
		t.Errorf("synthetic期望 healthy, 实际 %s", set.Synthetic.Signal)
	}

	// observed是原始样本合并后再汇总，不是透镜分数平均
	if set.Observed == nil {
		t.Fatal("observed透镜缺失")
	}
	if set.Observed.Evidence.SampleCount != 4 {
		t.Errorf("observed样本量期望 4, 实际 %d", set.Observed.Evidence.SampleCount)
	}
	if len(set.Observed.Evidence.Sources) != 2 {
		t.Errorf("observed来源期望 2个, 实际 %v", set.Observed.Evidence.Sources)
	}

	// 无账号数据且未指定账号时不产出account透镜
	if set.Account != nil {
		t.Errorf("account透镜应缺省, 实际 %+v", set.Account)
	}
	// 无官方状态时不产出official透镜
	if set.Official != nil {
		t.Errorf("official透镜应缺省, 实际 %+v", set.Official)
	}
}

func TestComposeLensesDenylistedProbes(t *testing.T) {
	t.Parallel()

	// 全部是配置类失败的探针：剔除后synthetic必须是no-data而非down
	src := &fakeSource{
		probes: []*model.ProbeEvent{
			{Time: recent(), Provider: "acme", ErrorCode: "http-404"},
			{Time: recent(), Provider: "acme", ErrorCode: "http-404"},
			{Time: recent(), Provider: "acme", ErrorCode: "http-401"},
		},
	}
	e := newTestEngine(t, src)

	set, err := e.ComposeLenses(context.Background(), model.Scope{Provider: "acme"}, 60)
	if err != nil {
		t.Fatalf("合成透镜失败: %v", err)
	}
	if set.Synthetic.Signal != model.SignalNoData {
		t.Errorf("期望 no-data, 实际 %s", set.Synthetic.Signal)
	}
	if set.Synthetic.Evidence.SampleCount != 0 {
		t.Errorf("黑名单探针不应计入样本量, 实际 %d", set.Synthetic.Evidence.SampleCount)
	}
}

func TestComposeLensesAccountAndOfficial(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Source: model.SourceAccount, AccountHash: "h1", LatencyMs: f(300)},
			{Time: recent(), Provider: "acme", Source: model.SourceAccount, AccountHash: "h2", LatencyMs: f(9000)},
		},
		statuses: map[string]*model.OfficialStatus{
			"acme": {Provider: "acme", Status: "degraded"},
		},
	}
	e := newTestEngine(t, src)

	set, err := e.ComposeLenses(context.Background(), model.Scope{Provider: "acme", AccountHash: "h1"}, 60)
	if err != nil {
		t.Fatalf("合成透镜失败: %v", err)
	}

	// 账号透镜只统计指定账号的事件
	if set.Account == nil {
		t.Fatal("account透镜缺失")
	}
	if set.Account.Evidence.SampleCount != 1 {
		t.Errorf("account样本量期望 1, 实际 %d", set.Account.Evidence.SampleCount)
	}
	if set.Account.Signal != model.SignalHealthy {
		t.Errorf("account期望 healthy, 实际 %s", set.Account.Signal)
	}

	if set.Official == nil {
		t.Fatal("official透镜缺失")
	}
	if set.Official.Signal != model.SignalDegraded {
		t.Errorf("official期望 degraded, 实际 %s", set.Official.Signal)
	}
	if set.Official.Evidence.Snapshot != "status=degraded" {
		t.Errorf("official快照不符, 实际 %q", set.Official.Evidence.Snapshot)
	}
}

func TestComposeLensesDegradedScanFlag(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		telemetry: []*model.TelemetryEvent{
			{Time: recent(), Provider: "acme", Source: model.SourceCrowd, LatencyMs: f(100)},
		},
		degraded: true,
	}
	e := newTestEngine(t, src)

	set, err := e.ComposeLenses(context.Background(), model.Scope{Provider: "acme"}, 60)
	if err != nil {
		t.Fatalf("合成透镜失败: %v", err)
	}
	if !set.Crowd.Evidence.DegradedScan || !set.Observed.Evidence.DegradedScan {
		t.Error("降级扫描标记未随证据包透出")
	}
}
