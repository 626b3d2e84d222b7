// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/ovibase/ovibase/internal/app/store/audit"
	"github.com/ovibase/ovibase/internal/app/system/gates"
	"github.com/ovibase/ovibase/internal/app/system/paging"
	"github.com/ovibase/ovibase/internal/app/system/respond"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const backURL = "/app/settings"

// ServeList handles GET /app/settings/audit: the tenant's audit events,
// newest first, with optional category, event type and date filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ac, _ := gates.FromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	category := strings.TrimSpace(query.Get(r, "category"))
	eventType := strings.TrimSpace(query.Get(r, "event_type"))
	startDate := strings.TrimSpace(query.Get(r, "start_date"))
	endDate := strings.TrimSpace(query.Get(r, "end_date"))
	page := paging.ParsePage(r)

	tenantID := ac.Tenant.ID
	filter := audit.QueryFilter{
		TenantID:  &tenantID,
		Category:  category,
		EventType: eventType,
		Limit:     paging.PageSize,
		Offset:    paging.Offset(page),
	}
	if startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartTime = &t
		}
	}
	if endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events", err, "A database error occurred.", backURL)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events", err, "A database error occurred.", backURL)
		return
	}

	// Collect unique user IDs for name resolution
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		users, err := h.Users.GetByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		}
		for id, u := range users {
			names[id] = displayName(u.Name, u.Email)
		}
	}
	nameOf := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		if n, ok := names[*id]; ok {
			return n
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:         e.ID.Hex(),
			Timestamp:  e.Timestamp,
			Category:   e.Category,
			EventType:  e.EventType,
			ActorName:  nameOf(e.ActorID),
			TargetName: nameOf(e.UserID),
			IP:         e.IP,
			Success:    e.Success,
			Reason:     e.FailureReason,
			Details:    e.Details,
		})
	}

	respond.JSON(w, http.StatusOK, listData{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		StartDate:  startDate,
		EndDate:    endDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(category),
		Pages:      paging.Compute(page, total),
	})
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
