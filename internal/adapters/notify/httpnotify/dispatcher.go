package httpnotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-care-reminders/internal/domain/reminders"
	"pet-care-reminders/internal/platform/httpclient"
)

const (
	DefaultSubject = "Dog360 - Pet Reminder"

	// Formato de fecha del cuerpo del mail (similar a toLocaleString en en-US).
	TextTimeLayout = "1/2/2006, 3:04:05 PM"

	pathSend   = "/send-reminder"
	pathUpdate = "/update-event"
	pathDelete = "/delete-event"
)

type Config struct {
	BaseURL string
	APIKey  string
	Subject string
	Timeout time.Duration

	// Location para formatear la fecha en el texto. Default: UTC.
	Location *time.Location

	// Transport opcional (tests).
	Transport http.RoundTripper
}

// Dispatcher notifica al servicio externo de mails.
type Dispatcher struct {
	hc      *httpclient.Client
	subject string
	loc     *time.Location
}

var _ reminders.Dispatcher = (*Dispatcher)(nil)

func New(cfg Config) (*Dispatcher, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("httpnotify: BaseURL is required")
	}

	headers := map[string]string{}
	if strings.TrimSpace(cfg.APIKey) != "" {
		headers["X-API-Key"] = strings.TrimSpace(cfg.APIKey)
	}

	hc, err := httpclient.New(httpclient.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
		Headers:   headers,
	})
	if err != nil {
		return nil, fmt.Errorf("httpnotify: %w", err)
	}

	subject := strings.TrimSpace(cfg.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Dispatcher{hc: hc, subject: subject, loc: loc}, nil
}

type sendRequest struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Text       string `json:"text"`
	ReminderID string `json:"reminderId"`
}

type updateRequest struct {
	ReminderID      string `json:"reminderId"`
	To              string `json:"to"`
	Subject         string `json:"subject"`
	Text            string `json:"text"`
	UpdatedTitle    string `json:"updatedTitle"`
	UpdatedDate     string `json:"updatedDate"`
	UpdatedCategory string `json:"updatedCategory"`
}

type deleteRequest struct {
	ReminderID string `json:"reminderId"`
}

func (d *Dispatcher) NotifyCreated(ctx context.Context, r reminders.Reminder) reminders.Outcome {
	body := sendRequest{
		To:         r.Owner,
		Subject:    d.subject,
		Text:       d.Text(r),
		ReminderID: r.ID,
	}
	return d.post(ctx, reminders.ActionCreated, r.ID, pathSend, body)
}

func (d *Dispatcher) NotifyUpdated(ctx context.Context, r reminders.Reminder) reminders.Outcome {
	body := updateRequest{
		ReminderID:      r.ID,
		To:              r.Owner,
		Subject:         d.subject,
		Text:            d.Text(r),
		UpdatedTitle:    r.Title,
		UpdatedDate:     r.DueAt.UTC().Format(time.RFC3339),
		UpdatedCategory: string(r.Category),
	}
	return d.post(ctx, reminders.ActionUpdated, r.ID, pathUpdate, body)
}

func (d *Dispatcher) NotifyCancelled(ctx context.Context, reminderID string) reminders.Outcome {
	return d.post(ctx, reminders.ActionCancelled, reminderID, pathDelete, deleteRequest{ReminderID: reminderID})
}

// Text arma el cuerpo del mail.
func (d *Dispatcher) Text(r reminders.Reminder) string {
	return fmt.Sprintf("Reminder for your %s: %s on %s",
		strings.ToLower(string(r.Category)), r.Title, r.DueAt.In(d.loc).Format(TextTimeLayout))
}

func (d *Dispatcher) post(ctx context.Context, action reminders.DispatchAction, id, path string, body any) reminders.Outcome {
	headers := map[string]string{"Idempotency-Key": IdempotencyKey(action, id)}

	if err := d.hc.DoJSON(ctx, http.MethodPost, path, headers, body, nil); err != nil {
		if code := httpclient.StatusCode(err); code != 0 {
			return reminders.Failed(action, id, fmt.Sprintf("notification service returned %d", code))
		}
		return reminders.Failed(action, id, err.Error())
	}
	return reminders.Sent(action, id)
}

// IdempotencyKey permite al servicio externo descartar reintentos de la misma acción.
func IdempotencyKey(action reminders.DispatchAction, reminderID string) string {
	return string(action) + ":" + reminderID
}
