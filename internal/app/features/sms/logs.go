// internal/app/features/sms/logs.go
package sms

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/paging"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.uber.org/zap"
)

type logRow struct {
	ID       string                 `json:"id"`
	To       string                 `json:"to"`
	Message  string                 `json:"message"`
	Tag      string                 `json:"tag,omitempty"`
	Batch    string                 `json:"batch,omitempty"`
	Provider models.SmsProviderKind `json:"provider"`
	Status   models.SmsStatus       `json:"status"`
	Error    string                 `json:"error,omitempty"`
	SentAt   time.Time              `json:"sentAt"`
}

type logPage struct {
	Logs  []logRow `json:"logs"`
	Batch string   `json:"batch,omitempty"`
	Page  int      `json:"page"`
	paging.Result
}

// ServeLogs handles GET /app/sms/logs: the tenant's send history, newest
// first, optionally narrowed to one batch.
func (h *Handler) ServeLogs(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)
	batch := strings.TrimSpace(query.Get(r, "batch"))
	page := paging.ParsePage(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "sms log list")
	defer cancel()

	rows, err := h.Logs.List(ctx, ac.Tenant.ID, batch, paging.Offset(page), paging.LimitPlusOne())
	if err != nil {
		h.Log.Error("list sms logs", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, MsgServerError)
		return
	}
	res := paging.TrimPage(&rows, page)

	out := logPage{Logs: make([]logRow, 0, len(rows)), Batch: batch, Page: page, Result: res}
	for _, l := range rows {
		out.Logs = append(out.Logs, logRow{
			ID:       l.ID.Hex(),
			To:       l.To,
			Message:  l.Message,
			Tag:      l.Tag,
			Batch:    l.Batch,
			Provider: l.Provider,
			Status:   l.Status,
			Error:    l.Error,
			SentAt:   l.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
