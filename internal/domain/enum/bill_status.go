package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BillStatus represents the lifecycle status of a committed bill. Bills are
// immutable financial records; the status is the only field that transitions
// after creation.
type BillStatus int

const (
	BillStatusPaid BillStatus = 0
	BillStatusVoid BillStatus = 1
	// BillStatusReconciliationFailed marks bills whose stock decrements did
	// not fully apply; the bill stands and the discrepancy is resolved by a
	// manual stock adjustment.
	BillStatusReconciliationFailed BillStatus = 2
)

func (s BillStatus) String() string {
	return [...]string{"Paid", "Void", "InventoryReconciliationFailed"}[s]
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BillStatus(i)
		return nil
	}
	switch str {
	case "Paid":
		*s = BillStatusPaid
	case "Void":
		*s = BillStatusVoid
	case "InventoryReconciliationFailed":
		*s = BillStatusReconciliationFailed
	}
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusPaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BillStatus(v)
	case int:
		*s = BillStatus(v)
	}
	return nil
}
