package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/eslsoft/wordladder/internal/entity"
)

// Records is the JSON column holding a word's records.
type Records []entity.Record

// DayStats is the JSON column holding one day's statistics.
type DayStats entity.DayStatistics

func scanJSON(name string, src, dst any) error {
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dst)
	case string:
		if data == "" {
			return nil
		}
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("%s: unsupported src type %T", name, src)
	}
}

// Scan implements sql.Scanner for Records.
func (r *Records) Scan(src any) error {
	if src == nil {
		*r = nil
		return nil
	}
	return scanJSON("Records", src, r)
}

// Value implements driver.Valuer for Records. Stored as text so the same
// column type works on every supported driver.
func (r Records) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for DayStats.
func (s *DayStats) Scan(src any) error {
	if src == nil {
		*s = DayStats{}
		return nil
	}
	return scanJSON("DayStats", src, (*entity.DayStatistics)(s))
}

// Value implements driver.Valuer for DayStats.
func (s DayStats) Value() (driver.Value, error) {
	b, err := json.Marshal(entity.DayStatistics(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
