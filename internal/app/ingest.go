package app

import (
	"net/http"
	"time"

	"aipulse/internal/model"
	"aipulse/internal/util"
	"aipulse/internal/validator"

	"github.com/gin-gonic/gin"
)

// telemetryPayload 遥测摄取载荷
// client_id/account_id 为调用方原始标识，入库前必须匿名化，绝不落库、不进日志
type telemetryPayload struct {
	model.TelemetryEvent
	ClientID  string `json:"client_id,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// toEvent 匿名化后转为可入库事件
func (p *telemetryPayload) toEvent(anonymizer *util.Anonymizer) *model.TelemetryEvent {
	ev := p.TelemetryEvent
	if p.ClientID != "" {
		ev.ClientHash = anonymizer.Hash(p.ClientID)
	}
	if p.AccountID != "" {
		ev.AccountHash = anonymizer.Hash(p.AccountID)
	}
	if ev.Time.IsZero() {
		ev.Time = model.JSONTime{Time: time.Now()}
	}
	return &ev
}

// handleIngestTelemetry POST /ingest/telemetry
// 接受单个事件对象或事件数组；功能开关关闭时为显式no-op
func (s *Server) handleIngestTelemetry(c *gin.Context) {
	if !s.cfg.IngestEnabled {
		s.resp.Success(c, gin.H{"ingested": 0, "disabled": true})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		s.resp.BadRequest(c, "读取请求体失败")
		return
	}

	var payloads []telemetryPayload
	if err := util.UnmarshalJSON(body, &payloads); err != nil {
		// 非数组时回退按单对象解析
		var single telemetryPayload
		if err := util.UnmarshalJSON(body, &single); err != nil {
			s.resp.BadRequest(c, "载荷不是合法的遥测事件")
			return
		}
		payloads = []telemetryPayload{single}
	}

	events := make([]*model.TelemetryEvent, 0, len(payloads))
	for i := range payloads {
		ev := payloads[i].toEvent(s.anonymizer)
		if err := validator.ValidateTelemetry(ev); err != nil {
			s.resp.Error(c, http.StatusBadRequest, err)
			return
		}
		events = append(events, ev)
	}

	if err := s.store.BatchAddTelemetry(c.Request.Context(), events); err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, gin.H{"ingested": len(events)})
}

// handleIngestProbe POST /ingest/probe
func (s *Server) handleIngestProbe(c *gin.Context) {
	if !s.cfg.IngestEnabled {
		s.resp.Success(c, gin.H{"ingested": 0, "disabled": true})
		return
	}

	var ev model.ProbeEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		s.resp.BadRequest(c, "载荷不是合法的探针事件")
		return
	}
	if ev.Time.IsZero() {
		ev.Time = model.JSONTime{Time: time.Now()}
	}

	if err := validator.ValidateProbe(&ev); err != nil {
		s.resp.Error(c, http.StatusBadRequest, err)
		return
	}

	if err := s.store.AddProbe(c.Request.Context(), &ev); err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, gin.H{"ingested": 1})
}

// handleIngestStatus PUT /ingest/status
// 官方状态页摄取管道推送每个提供商的最新状态
func (s *Server) handleIngestStatus(c *gin.Context) {
	if !s.cfg.IngestEnabled {
		s.resp.Success(c, gin.H{"updated": false, "disabled": true})
		return
	}

	var st model.OfficialStatus
	if err := c.ShouldBindJSON(&st); err != nil {
		s.resp.BadRequest(c, "载荷不是合法的官方状态")
		return
	}
	if st.FetchedAt.IsZero() {
		st.FetchedAt = model.JSONTime{Time: time.Now()}
	}

	if err := validator.ValidateOfficialStatus(&st); err != nil {
		s.resp.Error(c, http.StatusBadRequest, err)
		return
	}

	if err := s.store.UpsertOfficialStatus(c.Request.Context(), &st); err != nil {
		s.resp.InternalError(c, err)
		return
	}
	s.resp.Success(c, gin.H{"updated": true, "provider": st.Provider})
}
