package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// AdjustmentStatus represents the state of a manual stock adjustment
type AdjustmentStatus int

const (
	AdjustmentStatusPending   AdjustmentStatus = 0
	AdjustmentStatusApplied   AdjustmentStatus = 1
	AdjustmentStatusDismissed AdjustmentStatus = 2
)

func (s AdjustmentStatus) String() string {
	return [...]string{"Pending", "Applied", "Dismissed"}[s]
}

func (s AdjustmentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AdjustmentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = AdjustmentStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = AdjustmentStatusPending
	case "Applied":
		*s = AdjustmentStatusApplied
	case "Dismissed":
		*s = AdjustmentStatusDismissed
	}
	return nil
}

func (s AdjustmentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *AdjustmentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = AdjustmentStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = AdjustmentStatus(v)
	case int:
		*s = AdjustmentStatus(v)
	}
	return nil
}
