package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"uleaf-admin/internal/domain"
)

// envelope is the {success, data, error, message} shape every function
// returns. Fields keeps the whole top-level object for list adaptation.
type envelope struct {
	Success *bool
	Data    json.RawMessage
	Error   json.RawMessage
	Message string
	Fields  map[string]json.RawMessage
}

func decodeEnvelope(raw []byte) (*envelope, error) {
	env := &envelope{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return env, nil
	}
	if raw[0] != '{' {
		// bare arrays and scalars are treated as data
		var probe any
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, err
		}
		env.Data = json.RawMessage(raw)
		return env, nil
	}
	if err := json.Unmarshal(raw, &env.Fields); err != nil {
		return nil, err
	}
	if v, ok := env.Fields["success"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			env.Success = &b
		}
	}
	env.Data = env.Fields["data"]
	env.Error = env.Fields["error"]
	if v, ok := env.Fields["message"]; ok {
		_ = json.Unmarshal(v, &env.Message)
	}
	return env, nil
}

// message returns message || error || error.message.
func (e *envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Error
	}
	return ""
}

// list finds the record array for a resource. It checks data.<key>, data,
// results and <key> in that order, which covers every shape the functions
// have been seen to return.
func (e *envelope) list(key string) ([]map[string]any, error) {
	candidates := []json.RawMessage{}
	if obj := asObject(e.Data); obj != nil {
		candidates = append(candidates, obj[key])
	}
	candidates = append(candidates, e.Data, e.Fields["results"], e.Fields[key])
	for _, c := range candidates {
		c = bytes.TrimSpace(c)
		if len(c) == 0 || c[0] != '[' {
			continue
		}
		var items []any
		if err := json.Unmarshal(c, &items); err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			switch v := it.(type) {
			case map[string]any:
				out = append(out, v)
			case string:
				out = append(out, map[string]any{"id": v, "name": v})
			}
		}
		return out, nil
	}
	return nil, nil
}

// pagination reads pagination from the top level or from data.
func (e *envelope) pagination() *domain.Pagination {
	raw := e.Fields["pagination"]
	if len(raw) == 0 {
		if obj := asObject(e.Data); obj != nil {
			raw = obj["pagination"]
		}
	}
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	p := &domain.Pagination{
		Page:       intField(m, "page", "currentPage"),
		Limit:      intField(m, "limit", "pageSize"),
		Total:      intField(m, "total", "totalCount", "totalItems"),
		TotalPages: intField(m, "totalPages", "pages"),
		HasMore:    boolField(m, "hasMore", "hasNextPage"),
	}
	if !p.HasMore && p.TotalPages > 0 && p.Page > 0 {
		p.HasMore = p.Page < p.TotalPages
	}
	return p
}

func asObject(raw json.RawMessage) map[string]json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func floatField(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func intField(m map[string]any, keys ...string) int {
	return int(floatField(m, keys...))
}

func boolField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k].(bool); ok {
			return v
		}
	}
	return false
}

func objectField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

// timeField accepts RFC3339 strings, epoch millis and Firestore timestamps.
func timeField(m map[string]any, keys ...string) *time.Time {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
				if t, err := time.Parse(layout, v); err == nil {
					return &t
				}
			}
		case float64:
			t := time.UnixMilli(int64(v)).UTC()
			return &t
		case map[string]any:
			secs := floatField(v, "_seconds", "seconds")
			if secs > 0 {
				t := time.Unix(int64(secs), int64(floatField(v, "_nanoseconds", "nanoseconds"))).UTC()
				return &t
			}
		}
	}
	return nil
}
