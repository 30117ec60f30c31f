package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Course is a snapshot of a course as supplied by the caller at enroll time.
// Only the "id" field is inspected; every other field is stored as-is.
type Course map[string]json.RawMessage

// CourseFromJSON decodes a course snapshot and checks that it carries an id.
func CourseFromJSON(data []byte) (Course, error) {
	var c Course
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if _, ok := c.ID(); !ok {
		return nil, ErrCourseIDRequired
	}
	return c, nil
}

// ID returns a canonical encoding of the course id used for comparison.
// Numbers compare by value (1 and 1.0 are equal), strings by their decoded
// content and objects regardless of key order. Values of different JSON
// types never compare equal, so 1 and "1" are distinct.
func (c Course) ID() (string, bool) {
	raw, ok := c["id"]
	if !ok {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return "", false
	}
	var buf strings.Builder
	if err := writeCanonical(&buf, v); err != nil {
		return "", false
	}
	return buf.String(), true
}

func writeCanonical(buf *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case json.Number:
		r, ok := new(big.Rat).SetString(x.String())
		if !ok {
			return fmt.Errorf("invalid number %q", x)
		}
		buf.WriteString(r.RatString())
	case string:
		b, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(b)
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeCanonical(buf, x[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unexpected JSON value %T", v)
	}
	return nil
}

// SameID reports whether both courses carry the same id.
func (c Course) SameID(other Course) bool {
	a, ok := c.ID()
	if !ok {
		return false
	}
	b, ok := other.ID()
	return ok && a == b
}

// Clone returns a copy that shares no mutable state with c.
func (c Course) Clone() Course {
	if c == nil {
		return nil
	}
	out := make(Course, len(c))
	for k, v := range c {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
