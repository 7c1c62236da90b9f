package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// flexFieldMaps caches JSON tag -> struct field index mappings per type
var flexFieldMaps sync.Map

func flexFieldMap(t reflect.Type) map[string]int {
	if m, ok := flexFieldMaps.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		m[strings.Split(tag, ",")[0]] = i
	}
	flexFieldMaps.Store(t, m)
	return m
}

// UnmarshalJSON accepts both string-encoded and native numbers. Stats exports
// sometimes quote every value, and game ids lose leading zeros when numeric.
func (g *GameLog) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias GameLog
	a := (*Alias)(g)

	if err := json.Unmarshal(data, a); err == nil {
		g.GameID = normalizeGameID(g.GameID)
		return nil
	}
	if err := flexUnmarshal(data, a); err != nil {
		return err
	}
	g.GameID = normalizeGameID(g.GameID)
	return nil
}

// flexUnmarshal decodes field by field, coercing strings into numeric fields
// and numbers into string fields. dst must be a pointer to a struct.
func flexUnmarshal(data []byte, dst any) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	v := reflect.ValueOf(dst).Elem()
	fieldMap := flexFieldMap(v.Type())

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}
		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil || s == "" {
				continue
			}
			coerceStringToField(fv, s)
			continue
		}

		// Number into a string field, e.g. GameId 22400061
		if fv.Kind() == reflect.String {
			var n json.Number
			if err := json.Unmarshal(rawVal, &n); err == nil {
				fv.SetString(n.String())
			}
		}
	}
	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "108.0", truncated to int
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetInt(int64(n))
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			fv.SetBool(b)
		}
	case reflect.String:
		fv.SetString(s)
	}
}

// ParseScore reads a scoreboard score that may be quoted or empty.
func ParseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty score")
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", s, err)
	}
	return int(n), nil
}

func normalizeGameID(id string) string {
	if id == "" || len(id) >= 10 {
		return id
	}
	return strings.Repeat("0", 10-len(id)) + id
}
