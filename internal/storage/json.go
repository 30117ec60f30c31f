package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/courseroster/internal/model"
)

// EncodeCollection serializes a collection as an indented JSON array.
func EncodeCollection(students []*model.Student) ([]byte, error) {
	if students == nil {
		students = []*model.Student{}
	}
	return json.MarshalIndent(students, "", "  ")
}

// recordKeys holds the fields every persisted record must carry
type recordKeys struct {
	ID       *int64  `json:"id"`
	Username *string `json:"username"`
}

// DecodeCollection parses a persisted collection. Anything that is not a JSON
// array of student objects, each with a positive integer id and a string
// username, is reported as model.ErrMalformedCollection.
func DecodeCollection(data []byte) ([]*model.Student, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: document is not a JSON array", model.ErrMalformedCollection)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedCollection, err)
	}

	students := make([]*model.Student, 0, len(entries))
	for i, raw := range entries {
		if err := checkRecord(raw); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", model.ErrMalformedCollection, i, err)
		}
		var s model.Student
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", model.ErrMalformedCollection, i, err)
		}
		students = append(students, &s)
	}
	return students, nil
}

func checkRecord(raw json.RawMessage) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("record is null")
	}
	var keys recordKeys
	if err := json.Unmarshal(raw, &keys); err != nil {
		return err
	}
	if keys.ID == nil || *keys.ID <= 0 {
		return fmt.Errorf("missing or non-positive id")
	}
	if keys.Username == nil {
		return fmt.Errorf("missing username")
	}
	return nil
}
