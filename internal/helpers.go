package internal

import "strconv"

// Scalar is the set of types the typed parameter helpers convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns a route parameter converted to T, or the zero T.
func Param[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// Query returns a query parameter converted to T, or the zero T.
func Query[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault returns a query parameter converted to T, or defaultValue
// when it is missing or malformed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	if v, ok := convertParam[T](raw); ok {
		return v
	}
	return defaultValue
}

func convertParam[T Scalar](raw string) (T, bool) {
	var out T
	var (
		v   any
		err error
	)
	switch any(out).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return out, false
	}
	if err != nil {
		return out, false
	}
	return v.(T), true
}
