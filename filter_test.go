package eventbus

import (
	"encoding/json"
	"testing"
)

func TestFilterCombinators(t *testing.T) {
	yes := FilterFunc(func(event any) bool { return true })
	no := FilterFunc(func(event any) bool { return false })

	tests := []struct {
		name   string
		filter FilterFunc
		want   bool
	}{
		{"and all pass", FilterAnd(yes, yes), true},
		{"and one fails", FilterAnd(yes, no), false},
		{"and empty", FilterAnd(), true},
		{"or one passes", FilterOr(no, yes), true},
		{"or none pass", FilterOr(no, no), false},
		{"or empty", FilterOr(), false},
		{"not", FilterNot(no), true},
		{"not not", FilterNot(FilterNot(no)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter(struct{}{}); got != tt.want {
				t.Errorf("filter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterPayload(t *testing.T) {
	f := FilterPayload(func(e simpleEvent) bool { return e.ID > 10 })

	if !f(simpleEvent{ID: 11}) {
		t.Error("direct payload above threshold rejected")
	}
	if f(simpleEvent{ID: 5}) {
		t.Error("direct payload below threshold allowed")
	}
	if !f(Envelope[simpleEvent]{Payload: simpleEvent{ID: 42}}) {
		t.Error("enveloped payload rejected")
	}
	if f(otherEvent{X: 100}) {
		t.Error("unrelated type allowed")
	}
}

func TestFilterBySource(t *testing.T) {
	f := FilterBySource("engine")

	if !f(NewEnvelope(simpleEvent{}, "engine")) {
		t.Error("matching source rejected")
	}
	if f(NewEnvelope(simpleEvent{}, "plugin")) {
		t.Error("non-matching source allowed")
	}
	if f(simpleEvent{}) {
		t.Error("event without metadata allowed")
	}
}

func TestFilterByCorrelation(t *testing.T) {
	f := FilterByCorrelation("req-1")

	env := NewEnvelope(simpleEvent{}, "engine").WithCorrelation("req-1")
	if !f(env) {
		t.Error("matching correlation rejected")
	}
	if f(NewEnvelope(simpleEvent{}, "engine")) {
		t.Error("missing correlation allowed")
	}
}

func TestFilterJSONPath(t *testing.T) {
	payload := `{"user":{"name":"ana","role":"admin"},"count":3}`

	tests := []struct {
		name  string
		path  string
		want  string
		event any
		allow bool
	}{
		{"string match", "user.role", "admin", payload, true},
		{"string mismatch", "user.role", "guest", payload, false},
		{"bytes match", "user.name", "ana", []byte(payload), true},
		{"raw message match", "count", "3", json.RawMessage(payload), true},
		{"missing path", "user.email", "", payload, false},
		{"non-json event", "user.role", "admin", simpleEvent{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FilterJSONPath(tt.path, tt.want)
			if got := f(tt.event); got != tt.allow {
				t.Errorf("FilterJSONPath(%q, %q) = %v, want %v", tt.path, tt.want, got, tt.allow)
			}
		})
	}
}
