package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a free-form object column, used for localized text maps.
type JSON map[string]interface{}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON{}
		return nil
	}
	raw, err := rawJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, j)
}

// Localized returns the first non-empty string among the given keys.
func (j JSON) Localized(keys ...string) string {
	for _, key := range keys {
		if v, ok := j[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// StringArray is a JSON encoded string list column.
type StringArray []string

// Value implements driver.Valuer.
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	raw, err := rawJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

// rawJSON accepts both []byte and string driver values; postgres returns
// json columns as either depending on the protocol mode.
func rawJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}

func scanJSONInto(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}
	raw, err := rawJSON(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}
