package engine

import (
	"math"
	"testing"

	"aipulse/internal/model"
)

func f(v float64) *float64 { return &v }

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		p      float64
		expect *float64
	}{
		{name: "空输入返回nil", values: nil, p: 50, expect: nil},
		{name: "单值p50", values: []float64{100}, p: 50, expect: f(100)},
		{name: "单值p99", values: []float64{100}, p: 99, expect: f(100)},
		{name: "偶数个p50取下标floor(0.5*n)", values: []float64{10, 20, 30, 40}, p: 50, expect: f(30)},
		{name: "乱序输入先排序", values: []float64{40, 10, 30, 20}, p: 50, expect: f(30)},
		{name: "p95截断到n-1", values: []float64{1, 2, 3}, p: 95, expect: f(3)},
		{name: "p0取最小值", values: []float64{5, 1, 9}, p: 0, expect: f(1)},
		{name: "p100截断到最大值", values: []float64{5, 1, 9}, p: 100, expect: f(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Percentile(tt.values, tt.p)
			if (got == nil) != (tt.expect == nil) {
				t.Fatalf("期望 %v, 实际 %v", tt.expect, got)
			}
			if got != nil && *got != *tt.expect {
				t.Errorf("期望 %v, 实际 %v", *tt.expect, *got)
			}
		})
	}
}

func TestPercentileIndexFormula(t *testing.T) {
	t.Parallel()

	// p50 必须等于排序后下标 floor(0.5*n) 的值
	values := []float64{7, 3, 9, 1, 5, 11, 2}
	sorted := []float64{1, 2, 3, 5, 7, 9, 11}
	idx := int(math.Floor(0.5 * float64(len(sorted))))

	got := Percentile(values, 50)
	if got == nil || *got != sorted[idx] {
		t.Errorf("期望 %v, 实际 %v", sorted[idx], got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("空样本全部为nil", func(t *testing.T) {
		t.Parallel()
		s := Summarize(nil)
		if s.LatencyP50Ms != nil || s.HTTP429Rate != nil || s.HTTP5xxRate != nil || s.TokensPerSec != nil {
			t.Errorf("期望全部字段为nil, 实际 %+v", s)
		}
	})

	t.Run("均值只对存在的字段计算", func(t *testing.T) {
		t.Parallel()
		samples := []model.Sample{
			{HTTP429Rate: f(0.2)},
			{HTTP429Rate: f(0.4)},
			{LatencyMs: f(100)}, // 429缺失，不按零参与均值
		}
		s := Summarize(samples)
		if s.HTTP429Rate == nil || math.Abs(*s.HTTP429Rate-0.3) > 1e-9 {
			t.Errorf("期望429均值0.3, 实际 %v", s.HTTP429Rate)
		}
		if s.LatencyP50Ms == nil || *s.LatencyP50Ms != 100 {
			t.Errorf("期望p50=100, 实际 %v", s.LatencyP50Ms)
		}
	})

	t.Run("延迟分位数来自同一样本集", func(t *testing.T) {
		t.Parallel()
		var samples []model.Sample
		for i := 1; i <= 100; i++ {
			samples = append(samples, model.Sample{LatencyMs: f(float64(i * 10))})
		}
		s := Summarize(samples)
		if s.LatencyP95Ms == nil || *s.LatencyP95Ms != 960 {
			t.Errorf("期望p95=960, 实际 %v", s.LatencyP95Ms)
		}
		if s.LatencyP99Ms == nil || *s.LatencyP99Ms != 1000 {
			t.Errorf("期望p99=1000, 实际 %v", s.LatencyP99Ms)
		}
	})
}

func TestProbeSample(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		probe     model.ProbeEvent
		expect5xx float64
		expect429 float64
	}{
		{name: "成功探针计为零错误率", probe: model.ProbeEvent{}, expect5xx: 0, expect429: 0},
		{name: "429错误码计入限流率", probe: model.ProbeEvent{ErrorCode: "http-429"}, expect5xx: 0, expect429: 1},
		{name: "5xx错误码计入错误率", probe: model.ProbeEvent{ErrorCode: "http-503"}, expect5xx: 1, expect429: 0},
		{name: "超时计为服务侧失败", probe: model.ProbeEvent{ErrorCode: "timeout"}, expect5xx: 1, expect429: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := ProbeSample(&tt.probe)
			if s.HTTP5xxRate == nil || *s.HTTP5xxRate != tt.expect5xx {
				t.Errorf("5xx期望 %v, 实际 %v", tt.expect5xx, s.HTTP5xxRate)
			}
			if s.HTTP429Rate == nil || *s.HTTP429Rate != tt.expect429 {
				t.Errorf("429期望 %v, 实际 %v", tt.expect429, s.HTTP429Rate)
			}
		})
	}

	t.Run("延迟优先取p95缺失回落p50", func(t *testing.T) {
		t.Parallel()
		withP95 := ProbeSample(&model.ProbeEvent{LatencyP50Ms: f(100), LatencyP95Ms: f(400)})
		if withP95.LatencyMs == nil || *withP95.LatencyMs != 400 {
			t.Errorf("期望取p95=400, 实际 %v", withP95.LatencyMs)
		}
		onlyP50 := ProbeSample(&model.ProbeEvent{LatencyP50Ms: f(100)})
		if onlyP50.LatencyMs == nil || *onlyP50.LatencyMs != 100 {
			t.Errorf("期望回落p50=100, 实际 %v", onlyP50.LatencyMs)
		}
	})
}

func TestFilterProbeDenylist(t *testing.T) {
	t.Parallel()

	events := []*model.ProbeEvent{
		{ErrorCode: ""},
		{ErrorCode: "http-401"},
		{ErrorCode: "http-403"},
		{ErrorCode: "http-404"},
		{ErrorCode: "http-500"},
	}
	filtered := FilterProbeDenylist(events)
	if len(filtered) != 2 {
		t.Fatalf("期望剩余2条, 实际 %d", len(filtered))
	}
	for _, e := range filtered {
		if e.ErrorCode == "http-401" || e.ErrorCode == "http-403" || e.ErrorCode == "http-404" {
			t.Errorf("黑名单错误码未被剔除: %s", e.ErrorCode)
		}
	}
}
