// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/ovibase/ovibase/internal/app/store/audit"
	"github.com/ovibase/ovibase/internal/app/system/paging"
)

// listItem represents a single audit event row for display.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"eventType"`
	ActorName  string            `json:"actor,omitempty"`  // resolved from ActorID
	TargetName string            `json:"target,omitempty"` // resolved from UserID
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// listData is the response for the audit log list.
type listData struct {
	Items []listItem `json:"items"`

	// Filters
	Category  string `json:"category"`
	EventType string `json:"eventType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	// Filter options
	Categories []categoryOption `json:"categories"`
	EventTypes []string         `json:"eventTypes"`

	paging.Pages
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedNotMember,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventSignup,
	}

	adminEvents := []string{
		audit.EventStaffCreated,
		audit.EventPermissionsUpdated,
		audit.EventSmsProviderUpdated,
		audit.EventSmsTemplateCreated,
		audit.EventSmsTemplateDeleted,
		audit.EventSmsBatchSent,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
