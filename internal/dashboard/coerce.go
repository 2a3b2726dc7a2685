package dashboard

import (
	"encoding/json"
	"strconv"
	"time"
)

// epochMsThreshold separates second-precision epochs from millisecond ones.
// Anything above it is treated as milliseconds.
const epochMsThreshold = 1e11

// CoerceTime normalizes the timestamp shapes that have historically landed
// in the cache and in event payloads: time.Time values, {seconds, nanos}
// maps from serialized protobuf-style clients, numeric epochs in seconds or
// milliseconds, and RFC3339 strings. Returns false when the value cannot be
// interpreted.
func CoerceTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case map[string]interface{}:
		secs, ok := toFloat(t["seconds"])
		if !ok {
			if secs, ok = toFloat(t["_seconds"]); !ok {
				return time.Time{}, false
			}
		}
		nanos, _ := toFloat(t["nanoseconds"])
		if nanos == 0 {
			nanos, _ = toFloat(t["_nanoseconds"])
		}
		return time.Unix(int64(secs), int64(nanos)), true
	case string:
		if t == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		if epoch, err := strconv.ParseFloat(t, 64); err == nil {
			return fromEpoch(epoch), true
		}
		return time.Time{}, false
	default:
		if epoch, ok := toFloat(v); ok {
			return fromEpoch(epoch), true
		}
		return time.Time{}, false
	}
}

func fromEpoch(epoch float64) time.Time {
	if epoch > epochMsThreshold {
		return time.UnixMilli(int64(epoch))
	}
	return time.Unix(int64(epoch), 0)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
