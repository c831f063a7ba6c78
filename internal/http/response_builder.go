package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

const (
	eventRefresh      = "dashboard:refresh"
	eventNotification = "show-notification"

	// noticeTarget is the sidebar region error fragments are swapped into,
	// leaving the last good dashboard in place.
	noticeTarget = "#notice"
)

// NotificationType selects the styling of a show-notification event.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// notification is the payload of a show-notification event.
type notification struct {
	Type     NotificationType `json:"type"`
	Message  string           `json:"message"`
	Duration int              `json:"duration"`
}

// HTMXResponseBuilder assembles an HTMX fragment response: status, body and
// the events sent to the page through HX-Trigger.
type HTMXResponseBuilder struct {
	status  int
	body    []byte
	events  map[string]any
	headers http.Header
}

// NewHTMXResponse starts a 200 response with no body and no events.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:  http.StatusOK,
		events:  make(map[string]any),
		headers: make(http.Header),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger queues an HX-Trigger event. A later event with the same name wins.
func (b *HTMXResponseBuilder) Trigger(name string, detail any) *HTMXResponseBuilder {
	b.events[name] = detail
	return b
}

// TriggerDashboardRefresh tells the page which range the fragment covers so
// the charts can be redrawn and the inputs kept in sync.
func (b *HTMXResponseBuilder) TriggerDashboardRefresh(start, end string) *HTMXResponseBuilder {
	return b.Trigger(eventRefresh, map[string]string{"start": start, "end": end})
}

func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(eventNotification, notification{Type: kind, Message: message, Duration: durationMs})
}

func (b *HTMXResponseBuilder) TriggerWarningNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationWarning, message, 4000)
}

// Retarget redirects the swap to selector instead of the element that issued
// the request.
func (b *HTMXResponseBuilder) Retarget(selector string) *HTMXResponseBuilder {
	b.headers.Set("HX-Retarget", selector)
	b.headers.Set("HX-Reswap", "innerHTML")
	return b
}

// BodyHTML sets a rendered fragment as the body.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers.Set("Content-Type", "text/html; charset=utf-8")
	b.body = html
	return b
}

// Write flushes headers, events and body to w. Fragments are never cached
// because they depend on the query string.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.headers {
		h[name] = values
	}
	h.Set("Cache-Control", "no-store")
	h.Add("Vary", "HX-Request")
	if len(b.events) > 0 {
		if raw, err := json.Marshal(b.events); err == nil {
			h.Set("HX-Trigger", string(raw))
		}
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message as an escaped alert swapped into the notice
// region, with a matching error notification.
func ErrorResponse(status int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(status).
		Retarget(noticeTarget).
		TriggerNotification(NotificationError, message, 5000).
		BodyHTML([]byte(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`))
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
