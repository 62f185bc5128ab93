package omophub

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Params holds query parameters. A value may be a string, bool, integer or
// float, a pointer to one of those, or a slice of them. Slices are sent as a
// single comma-joined value and nil values are left out of the query.
type Params map[string]any

// Set stores value under key and returns p for chaining.
func (p Params) Set(key string, value any) Params {
	p[key] = value
	return p
}

// Flag sets key to "true" when on, and leaves it out otherwise.
func (p Params) Flag(key string, on bool) Params {
	if on {
		p[key] = "true"
	}
	return p
}

// Opt stores value under key unless it is a zero value or an empty slice.
func (p Params) Opt(key string, value any) Params {
	if value == nil {
		return p
	}
	rv := reflect.ValueOf(value)
	if rv.IsZero() || (rv.Kind() == reflect.Slice && rv.Len() == 0) {
		return p
	}
	p[key] = value
	return p
}

// Values converts p to url.Values, dropping nil entries.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for key, value := range p {
		if s, ok := formatParam(value); ok {
			values.Set(key, s)
		}
	}
	return values
}

// Encode returns the URL-encoded query string, sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func formatParam(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "", false
		}
		items := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := formatScalar(rv.Index(i)); ok {
				items = append(items, s)
			}
		}
		return strings.Join(items, ","), true
	}
	return formatScalar(rv)
}

func formatScalar(rv reflect.Value) (string, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		return fmt.Sprint(rv.Interface()), true
	}
}
