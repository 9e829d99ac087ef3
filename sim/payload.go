package sim

// Helpers for reading the untyped payloads handed over by the BIM/CAD
// layer. Geometry and load records arrive as map[string]any (decoded from
// JSON or YAML), so numeric fields may be float64, int, or int64 depending
// on the decoder. All helpers treat a missing or mistyped key as "use the
// default", matching how upstream payloads have always been consumed.

func payloadFloat(m map[string]any, key string, def float64) float64 {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func payloadInt(m map[string]any, key string, def int) int {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func payloadString(m map[string]any, key string, def string) string {
	if m == nil {
		return def
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

func payloadSlice(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

func payloadMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

// payloadVector reads a numeric slice like a direction or position,
// padding with zeros to length n.
func payloadVector(m map[string]any, key string, n int, def []float64) []float64 {
	raw := payloadSlice(m, key)
	if raw == nil {
		out := make([]float64, n)
		copy(out, def)
		return out
	}
	out := make([]float64, n)
	for i := 0; i < n && i < len(raw); i++ {
		switch v := raw[i].(type) {
		case float64:
			out[i] = v
		case int:
			out[i] = float64(v)
		case int64:
			out[i] = float64(v)
		}
	}
	return out
}

// payloadMaps converts a []any of records into []map[string]any,
// skipping entries that are not maps.
func payloadMaps(raw []any) []map[string]any {
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
