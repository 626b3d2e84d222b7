// internal/app/system/sms/dispatcher.go
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	smsproviderstore "github.com/ovibase/ovibase/internal/app/store/smsproviders"
	"github.com/ovibase/ovibase/internal/app/system/timeouts"
	"github.com/ovibase/ovibase/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// User-facing failure messages.
const (
	ErrMsgNotConfigured   = "SMS provider not configured. Add it in Admin Settings → SMS Provider."
	ErrMsgMissingKey      = "SMS provider API key is missing. Add it in Admin Settings → SMS Provider."
	ErrMsgUnreadableKey   = "SMS provider API key could not be read. Re-enter it in Admin Settings → SMS Provider."
	ErrMsgMissingNumber   = "Missing recipient number."
	errMsgNotImplementedF = "Provider not implemented: %s"
)

// DefaultSender is used when the tenant has no sender id.
const DefaultSender = "OVIBASE"

// DefaultConcurrency bounds in-flight provider calls per batch.
const DefaultConcurrency = 8

// SettingsSource loads a tenant's provider setting. A tenant without one
// yields smsproviderstore.ErrNotFound.
type SettingsSource interface {
	Get(ctx context.Context, tenantID primitive.ObjectID) (models.SmsProviderSetting, error)
}

// KeyOpener decrypts a sealed credential.
type KeyOpener interface {
	Open(blob []byte) (string, error)
}

// Message is one outbound text.
type Message struct {
	To   string
	Body string
}

// Failure describes one message that was not accepted. Index refers to the
// position in the input slice.
type Failure struct {
	Index int    `json:"index"`
	To    string `json:"to"`
	Error string `json:"error"`
}

// Result summarises a batch. Failures keep input order.
type Result struct {
	Provider  models.SmsProviderKind `json:"provider"`
	Attempted int                    `json:"attempted"`
	Sent      int                    `json:"sent"`
	Failed    int                    `json:"failed"`
	Failures  []Failure              `json:"failures"`
}

// FailureAt returns the failure for input index i, if any.
func (r Result) FailureAt(i int) (Failure, bool) {
	for _, f := range r.Failures {
		if f.Index == i {
			return f, true
		}
	}
	return Failure{}, false
}

// Dispatcher sends batches through the tenant's configured provider.
type Dispatcher struct {
	settings  SettingsSource
	keys      KeyOpener
	providers Registry
	log       *zap.Logger
	metrics   *Metrics

	// Sender overrides DefaultSender.
	Sender string

	// Concurrency limits parallel provider calls.
	Concurrency int

	// Timeout bounds each provider call; zero uses timeouts.SMS().
	Timeout time.Duration
}

// NewDispatcher wires a dispatcher. metrics may be nil.
func NewDispatcher(settings SettingsSource, keys KeyOpener, providers Registry, metrics *Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		settings:    settings,
		keys:        keys,
		providers:   providers,
		log:         logger,
		metrics:     metrics,
		Sender:      DefaultSender,
		Concurrency: DefaultConcurrency,
	}
}

// Send delivers msgs for the tenant. Per-message problems are reported in
// the Result; the error is reserved for failing to load the setting.
func (d *Dispatcher) Send(ctx context.Context, tenantID primitive.ObjectID, msgs []Message) (Result, error) {
	start := time.Now()
	res := Result{Provider: models.SmsProviderNone, Attempted: len(msgs)}

	setting, err := d.settings.Get(ctx, tenantID)
	switch {
	case errors.Is(err, smsproviderstore.ErrNotFound):
		failAll(&res, msgs, ErrMsgNotConfigured)
		d.finish(&res, start)
		return res, nil
	case err != nil:
		return res, err
	}
	if setting.Provider == models.SmsProviderNone || setting.Provider == "" {
		failAll(&res, msgs, ErrMsgNotConfigured)
		d.finish(&res, start)
		return res, nil
	}
	res.Provider = setting.Provider

	if !setting.HasCredential() {
		failAll(&res, msgs, ErrMsgMissingKey)
		d.finish(&res, start)
		return res, nil
	}

	apiKey, err := d.keys.Open(setting.APIKeySealed)
	if err != nil || apiKey == "" {
		d.log.Warn("sms credential unreadable",
			zap.String("tenant_id", tenantID.Hex()), zap.Error(err))
		failAll(&res, msgs, ErrMsgUnreadableKey)
		d.finish(&res, start)
		return res, nil
	}

	cred := Credential{
		APIKey:  apiKey,
		Sender:  d.sender(setting.SenderID),
		From:    setting.From,
		BaseURL: setting.BaseURL,
	}

	slots := make([]string, len(msgs))
	numbers := make([]string, len(msgs))
	for i, m := range msgs {
		if numbers[i] = CleanNumber(m.To); numbers[i] == "" {
			slots[i] = ErrMsgMissingNumber
		}
	}

	provider, ok := d.providers[setting.Provider]
	if !ok || provider == nil {
		for i := range slots {
			if slots[i] == "" {
				slots[i] = fmt.Sprintf(errMsgNotImplementedF, setting.Provider)
			}
		}
		collect(&res, msgs, slots)
		d.finish(&res, start)
		return res, nil
	}

	limit := d.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	perMsg := d.Timeout
	if perMsg <= 0 {
		perMsg = timeouts.SMS()
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, m := range msgs {
		to := numbers[i]
		if to == "" {
			continue
		}
		g.Go(func() error {
			mctx, cancel := context.WithTimeout(ctx, perMsg)
			defer cancel()
			if err := provider.Send(mctx, cred, to, m.Body); err != nil {
				slots[i] = errorText(err)
			}
			return nil
		})
	}
	_ = g.Wait()

	collect(&res, msgs, slots)
	d.finish(&res, start)
	return res, nil
}

func (d *Dispatcher) sender(configured string) string {
	if s := strings.TrimSpace(configured); s != "" {
		return s
	}
	if d.Sender != "" {
		return d.Sender
	}
	return DefaultSender
}

func (d *Dispatcher) finish(res *Result, start time.Time) {
	res.Failed = len(res.Failures)
	res.Sent = res.Attempted - res.Failed
	d.metrics.RecordBatch(res.Provider, res.Sent, res.Failed, time.Since(start))
}

// collect turns non-empty slots into failures, in input order.
func collect(res *Result, msgs []Message, slots []string) {
	for i, msg := range slots {
		if msg != "" {
			res.Failures = append(res.Failures, Failure{Index: i, To: msgs[i].To, Error: msg})
		}
	}
}

func failAll(res *Result, msgs []Message, reason string) {
	res.Failures = make([]Failure, 0, len(msgs))
	for i, m := range msgs {
		res.Failures = append(res.Failures, Failure{Index: i, To: m.To, Error: reason})
	}
}

func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "SMS provider timed out."
	}
	if s := strings.TrimSpace(err.Error()); s != "" {
		return s
	}
	return "Unknown SMS provider error."
}

// CleanNumber strips whitespace. A number with no digits is treated as
// missing.
func CleanNumber(s string) string {
	out := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if strings.IndexFunc(out, unicode.IsDigit) < 0 {
		return ""
	}
	return out
}
