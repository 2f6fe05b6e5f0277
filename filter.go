package eventbus

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Common filter predicates for event registration. Filters run just
// before a handler is claimed or invoked, with no lock held.

// FilterBySource allows only events whose metadata names the given source.
func FilterBySource(source string) FilterFunc {
	return func(event any) bool {
		mp, ok := event.(MetadataProvider)
		return ok && mp.EventMetadata().Source == source
	}
}

// FilterByCorrelation allows only events with the given correlation id.
func FilterByCorrelation(correlationID string) FilterFunc {
	return func(event any) bool {
		mp, ok := event.(MetadataProvider)
		return ok && mp.EventMetadata().CorrelationID == correlationID
	}
}

// FilterPayload builds a filter from a typed predicate. It matches the
// event directly or as an Envelope[T] payload; other types are rejected.
func FilterPayload[T any](predicate func(payload T) bool) FilterFunc {
	return func(event any) bool {
		if p, ok := event.(T); ok {
			return predicate(p)
		}
		if env, ok := event.(Envelope[T]); ok {
			return predicate(env.Payload)
		}
		return false
	}
}

// FilterJSONPath allows only raw-JSON events whose value at path equals
// want. The event must be a []byte, json.RawMessage or string; anything
// else is rejected.
func FilterJSONPath(path, want string) FilterFunc {
	return func(event any) bool {
		var res gjson.Result
		switch raw := event.(type) {
		case []byte:
			res = gjson.GetBytes(raw, path)
		case json.RawMessage:
			res = gjson.GetBytes(raw, path)
		case string:
			res = gjson.Get(raw, path)
		default:
			return false
		}
		return res.Exists() && res.String() == want
	}
}

// FilterAnd combines filters with AND logic.
func FilterAnd(filters ...FilterFunc) FilterFunc {
	return func(event any) bool {
		for _, f := range filters {
			if !f(event) {
				return false
			}
		}
		return true
	}
}

// FilterOr combines filters with OR logic.
func FilterOr(filters ...FilterFunc) FilterFunc {
	return func(event any) bool {
		for _, f := range filters {
			if f(event) {
				return true
			}
		}
		return false
	}
}

// FilterNot negates a filter.
func FilterNot(filter FilterFunc) FilterFunc {
	return func(event any) bool {
		return !filter(event)
	}
}
