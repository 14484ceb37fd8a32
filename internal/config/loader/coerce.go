package loader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Coerce converts the scalar leaves of layer in place to the type of the
// value at the same path in like. Paths missing from like are left alone.
func Coerce(layer, like map[string]any) error {
	return coerceMap("", layer, like)
}

func coerceMap(prefix string, layer, like map[string]any) error {
	var errs []error
	for key, val := range layer {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		target, ok := like[key]
		if !ok {
			continue
		}
		if sub, ok := val.(map[string]any); ok {
			if subLike, ok := target.(map[string]any); ok {
				if err := coerceMap(path, sub, subLike); err != nil {
					errs = append(errs, err)
				}
			}
			continue
		}

		out, err := coerceValue(val, target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		layer[key] = out
	}
	return errors.Join(errs...)
}

func coerceValue(val, like any) (any, error) {
	switch like.(type) {
	case string:
		if s, ok := val.(string); ok {
			return s, nil
		}
		return fmt.Sprint(val), nil
	case int64:
		switch v := val.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", v)
			}
			return i, nil
		}
	case bool:
		switch v := val.(type) {
		case bool:
			return v, nil
		case string:
			b, ok := parseBool(v)
			if !ok {
				return nil, fmt.Errorf("%q is not a boolean", v)
			}
			return b, nil
		}
	default:
		return val, nil
	}
	return nil, fmt.Errorf("cannot use %T value %v as %T", val, val, like)
}

// parseBool accepts the usual words for on and off.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}
