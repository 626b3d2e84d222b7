// internal/app/features/sms/handler.go
package sms

import (
	"context"

	"github.com/ovibase/ovibase/internal/app/system/auditlog"
	smsengine "github.com/ovibase/ovibase/internal/app/system/sms"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// User-facing messages, shown on the page the form was posted from.
const (
	MsgChooseTemplate   = "Choose a template first."
	MsgSelectMembers    = "Select at least one member."
	MsgTooManyMembers   = "Too many members selected."
	MsgTemplateNotFound = "Template not found."
	MsgNoMobiles        = "No members with mobile numbers."
	MsgBadForm          = "Invalid form submission."
	MsgServerError      = "Something went wrong. Please try again."
)

const (
	dashboardURL = "/app"
	membersURL   = "/app/members"
)

type TemplateGetter interface {
	Get(ctx context.Context, tenantID, id primitive.ObjectID) (models.SmsTemplate, error)
}

type MemberLister interface {
	ListWithMobile(ctx context.Context, tenantID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Member, error)
	ListAllWithMobile(ctx context.Context, tenantID primitive.ObjectID) ([]models.Member, error)
}

// Sender is satisfied by *smsengine.Dispatcher.
type Sender interface {
	Send(ctx context.Context, tenantID primitive.ObjectID, msgs []smsengine.Message) (smsengine.Result, error)
}

// LogStore records and pages through sent messages.
type LogStore interface {
	InsertMany(ctx context.Context, logs []models.SmsLog) error
	List(ctx context.Context, tenantID primitive.ObjectID, batch string, offset, limit int64) ([]models.SmsLog, error)
}

type Handler struct {
	Templates TemplateGetter
	Members   MemberLister
	Sender    Sender
	Logs      LogStore
	Log       *zap.Logger
	AuditLog  *auditlog.Logger
}

func NewHandler(templates TemplateGetter, members MemberLister, sender Sender, logs LogStore, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Templates: templates,
		Members:   members,
		Sender:    sender,
		Logs:      logs,
		Log:       logger,
		AuditLog:  audit,
	}
}
