package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// HeaderMap stores HTTP headers inside a JSON column.
type HeaderMap map[string][]string

// Value implements driver.Valuer so HeaderMap can be stored as JSON.
func (h HeaderMap) Value() (driver.Value, error) {
	if len(h) == 0 {
		return []byte("{}"), nil
	}

	data, err := json.Marshal(map[string][]string(h))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Scan implements sql.Scanner to hydrate the HeaderMap from the database.
func (h *HeaderMap) Scan(value any) error {
	if value == nil {
		*h = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return h.unmarshal(v)
	case string:
		return h.unmarshal([]byte(v))
	default:
		return fmt.Errorf("domain.HeaderMap: unsupported type %T", value)
	}
}

func (h *HeaderMap) unmarshal(data []byte) error {
	if len(data) == 0 {
		*h = nil
		return nil
	}

	var parsed map[string][]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Get returns the first value recorded for name, or "".
func (h HeaderMap) Get(name string) string {
	values := h[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
