package icsdes

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between Record and a stable JSON shape so hosting
// applications can hand records to the codec without touching wire
// text:
//
//	{"form":"214","fields":{"6":"Jim","30":[{"3":"0800","23":"Briefing"}]}}
//
// Field codes become string keys (JSON object keys are strings);
// repeated groups become arrays of flat string-valued objects.

type jsonRecord struct {
	Form   string                     `json:"form"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// ToJSON converts a record to its JSON shape.
func ToJSON(r *Record) ([]byte, error) {
	fields := make(map[string]json.RawMessage, r.Len())
	for _, code := range r.Codes() {
		v, _ := r.Get(code)
		var raw []byte
		var err error
		if group, ok := v.Group(); ok {
			items := make([]map[string]string, len(group))
			for i, item := range group {
				m := make(map[string]string, len(item))
				for sub, val := range item {
					m[strconv.Itoa(sub)] = val
				}
				items[i] = m
			}
			raw, err = json.Marshal(items)
		} else {
			s, _ := v.Scalar()
			raw, err = json.Marshal(s)
		}
		if err != nil {
			return nil, fmt.Errorf("icsdes: to json: field %d: %w", code, err)
		}
		fields[strconv.Itoa(code)] = raw
	}
	return json.Marshal(jsonRecord{Form: r.FormType(), Fields: fields})
}

// FromJSON converts the JSON shape back to a record. Scalar fields must
// be JSON strings; group fields must be arrays of string-valued
// objects.
func FromJSON(data []byte) (*Record, error) {
	var jr jsonRecord
	if err := json.Unmarshal(data, &jr); err != nil {
		return nil, fmt.Errorf("icsdes: from json: %w", err)
	}
	if jr.Form == "" {
		return nil, fmt.Errorf("icsdes: from json: missing form type")
	}
	r := NewRecord(jr.Form)
	for key, raw := range jr.Fields {
		code, err := strconv.Atoi(key)
		if err != nil || code < MinFieldCode || code > MaxFieldCode {
			return nil, fmt.Errorf("icsdes: from json: invalid field code %q", key)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			r.Set(code, s)
			continue
		}
		var items []map[string]string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("icsdes: from json: field %d: expected string or array of objects", code)
		}
		subs := make([]SubRecord, len(items))
		for i, item := range items {
			sub := make(SubRecord, len(item))
			for k, val := range item {
				subCode, err := strconv.Atoi(k)
				if err != nil || subCode < MinFieldCode || subCode > MaxFieldCode {
					return nil, fmt.Errorf("icsdes: from json: field %d item %d: invalid sub-code %q", code, i, k)
				}
				sub[subCode] = val
			}
			subs[i] = sub
		}
		r.SetGroup(code, subs...)
	}
	return r, nil
}
