package files

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const fileInfoAttr = "file_info"

// Entry is one file from a backend listing. Keys the panel does not model
// are kept in Extra as display strings.
type Entry struct {
	Name     string
	ID       string
	Size     int64 // bytes, 0 when unknown
	Modified time.Time
	Extra    map[string]string
}

var (
	nameKeys     = []string{"name", "filename", "old_filename"}
	idKeys       = []string{"id", "file_id"}
	sizeKeys     = []string{"size", "size_bytes"}
	sizeMBKeys   = []string{"size_mb"}
	modifiedKeys = []string{"timestamp", "modified", "update_time", "create_time", "time"}
)

func parseEntries(raw any) []Entry {
	var items []map[string]any
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				items = append(items, m)
			}
		}
	case []map[string]any:
		items = v
	default:
		return nil
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, parseEntry(item))
	}
	return entries
}

func parseEntry(item map[string]any) Entry {
	used := make(map[string]bool)
	take := func(keys []string) (any, bool) {
		for _, k := range keys {
			if v, ok := item[k]; ok && v != nil {
				used[k] = true
				return v, true
			}
		}
		return nil, false
	}

	var e Entry
	if v, ok := take(nameKeys); ok {
		e.Name = strings.TrimSpace(toString(v))
	}
	if v, ok := take(idKeys); ok {
		e.ID = toString(v)
	}
	if v, ok := take(sizeKeys); ok {
		if n, ok := toFloat(v); ok {
			e.Size = int64(n)
		}
	} else if v, ok := take(sizeMBKeys); ok {
		if n, ok := toFloat(v); ok {
			e.Size = int64(math.Round(n * 1024 * 1024))
		}
	}
	if v, ok := take(modifiedKeys); ok {
		e.Modified = toTime(v)
	}

	for k, v := range item {
		if used[k] || v == nil {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]string)
		}
		e.Extra[k] = toString(v)
	}
	return e
}

// ExtraKeys returns the Extra keys in sorted order.
func (e Entry) ExtraKeys() []string {
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// toTime accepts unix seconds, unix milliseconds, or RFC 3339 strings.
func toTime(v any) time.Time {
	if s, ok := v.(string); ok {
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(s)); err == nil {
			return ts
		}
	}
	n, ok := toFloat(v)
	if !ok || n <= 0 {
		return time.Time{}
	}
	// Anything past 1e11 seconds is year 5138; treat it as milliseconds.
	if n > 1e11 {
		return time.UnixMilli(int64(n))
	}
	return time.Unix(int64(n), 0)
}
