package protocol

import (
	"math"
	"strconv"
	"strings"
)

// Field is a single key/value item of a stats body. Value holds an int64, a
// float64 or a string.
type Field struct {
	Key   string
	Value interface{}
}

// Stats is the decoded body of an OK reply. Bodies made of key/value lines
// fill Fields in the order they were received, bodies made of list lines fill
// List.
type Stats struct {
	Fields []Field
	List   []string
}

// IsList returns true if the decoded body consisted of list items only.
func (stats *Stats) IsList() bool {
	return len(stats.Fields) == 0
}

// Get returns the value of the specified key.
func (stats *Stats) Get(key string) (interface{}, bool) {
	for _, field := range stats.Fields {
		if field.Key == key {
			return field.Value, true
		}
	}

	return nil, false
}

// Int returns the value of the specified key if it was decoded as an integer.
func (stats *Stats) Int(key string) (int64, bool) {
	value, _ := stats.Get(key)
	i, ok := value.(int64)
	return i, ok
}

// String returns the value of the specified key in its string form.
func (stats *Stats) String(key string) (string, bool) {
	value, ok := stats.Get(key)
	if !ok {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}

	return "", false
}

// Keys returns the keys in the order they were received.
func (stats *Stats) Keys() []string {
	keys := make([]string, len(stats.Fields))
	for i, field := range stats.Fields {
		keys[i] = field.Key
	}

	return keys
}

// Map returns the key/value items as a map.
func (stats *Stats) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(stats.Fields))
	for _, field := range stats.Fields {
		m[field.Key] = field.Value
	}

	return m
}

// DecodeStats decodes the body of a stats or list reply. The first line is a
// document header and is skipped. Lines starting with a dash are list items,
// other lines are split at the first colon into a key and a value.
//
// A body that mixes both kinds of lines keeps each in its own slice.
func DecodeStats(body []byte) *Stats {
	stats := &Stats{}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) < 2 {
		return stats
	}

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")

		switch {
		case line == "":
		case line[0] == '-':
			stats.List = append(stats.List, trimOneSpace(line[1:]))
		default:
			idx := strings.IndexByte(line, ':')
			if idx == -1 {
				continue
			}

			stats.Fields = append(stats.Fields, Field{
				Key:   line[:idx],
				Value: inferValue(trimOneSpace(line[idx+1:])),
			})
		}
	}

	return stats
}

func trimOneSpace(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}

	return s
}

// inferValue returns v as an int64 if it is an integral number, as a float64
// if it is any other finite number and as a string otherwise.
func inferValue(v string) interface{} {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}

	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}

	return f
}
