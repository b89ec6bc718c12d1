package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"aipulse/internal/catalog"
	"aipulse/internal/config"
	"aipulse/internal/model"
)

// fakeSource 内存事件源，按过滤条件筛选后返回
type fakeSource struct {
	telemetry []*model.TelemetryEvent
	probes    []*model.ProbeEvent
	statuses  map[string]*model.OfficialStatus
	degraded  bool
	err       error
}

func (s *fakeSource) ListTelemetry(_ context.Context, filter *model.EventFilter) ([]*model.TelemetryEvent, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	var out []*model.TelemetryEvent
	for _, ev := range s.telemetry {
		if filter.Provider != "" && ev.Provider != filter.Provider {
			continue
		}
		if filter.Source != "" && ev.Source != filter.Source {
			continue
		}
		if filter.AccountHash != "" && ev.AccountHash != filter.AccountHash {
			continue
		}
		if !filter.Since.IsZero() && ev.Time.Before(filter.Since) {
			continue
		}
		out = append(out, ev)
	}
	return out, s.degraded, nil
}

func (s *fakeSource) ListProbes(_ context.Context, filter *model.EventFilter) ([]*model.ProbeEvent, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	var out []*model.ProbeEvent
	for _, ev := range s.probes {
		if filter.Provider != "" && ev.Provider != filter.Provider {
			continue
		}
		if !filter.Since.IsZero() && ev.Time.Before(filter.Since) {
			continue
		}
		out = append(out, ev)
	}
	return out, s.degraded, nil
}

func (s *fakeSource) GetOfficialStatus(_ context.Context, provider string) (*model.OfficialStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.statuses[provider], nil
}

func (s *fakeSource) ListOfficialStatuses(_ context.Context) ([]*model.OfficialStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*model.OfficialStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, st)
	}
	return out, nil
}

func (s *fakeSource) ListProviders(_ context.Context, _ time.Time) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	seen := make(map[string]bool)
	var out []string
	for _, ev := range s.telemetry {
		if !seen[ev.Provider] {
			seen[ev.Provider] = true
			out = append(out, ev.Provider)
		}
	}
	for _, ev := range s.probes {
		if !seen[ev.Provider] {
			seen[ev.Provider] = true
			out = append(out, ev.Provider)
		}
	}
	return out, nil
}

const testCatalogJSON = `{
  "_default": {
    "models": [{"name": "fallback-small"}],
    "regions": ["global"],
    "endpoints": ["chat"]
  },
  "acme": {
    "models": [
      {"name": "acme-large", "tier": "pro", "streaming": true},
      {"name": "acme-mini", "tier": "free"}
    ],
    "regions": ["us-east", "eu-west"],
    "endpoints": ["chat"]
  }
}`

// testCatalog 构造带备选模型/区域的测试目录
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(testCatalogJSON), 0o644); err != nil {
		t.Fatalf("写入测试目录失败: %v", err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("加载测试目录失败: %v", err)
	}
	return cat
}

func newTestEngine(t *testing.T, src *fakeSource) *Engine {
	t.Helper()
	return New(src, testCatalog(t))
}

func recent() model.JSONTime {
	return model.JSONTime{Time: time.Now().Add(-time.Minute)}
}

func TestClampWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     int
		expect int
	}{
		{0, config.DefaultWindowMinutes},
		{-5, config.DefaultWindowMinutes},
		{30, 30},
		{config.MaxWindowMinutes, config.MaxWindowMinutes},
		{config.MaxWindowMinutes + 1, config.MaxWindowMinutes},
	}
	for _, tt := range tests {
		if got := ClampWindow(tt.in); got != tt.expect {
			t.Errorf("ClampWindow(%d) 期望 %d, 实际 %d", tt.in, tt.expect, got)
		}
	}
}
