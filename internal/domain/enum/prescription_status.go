package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PrescriptionStatus represents the status of a prescription
type PrescriptionStatus int

const (
	PrescriptionStatusActive    PrescriptionStatus = 0
	PrescriptionStatusDispensed PrescriptionStatus = 1
	PrescriptionStatusVoided    PrescriptionStatus = 2
	PrescriptionStatusExpired   PrescriptionStatus = 3
)

// Consumable reports whether a prescription in this status may back a new
// bill. Dispensed prescriptions remain consumable: refills produce additional
// bills against the same prescription.
func (s PrescriptionStatus) Consumable() bool {
	return s == PrescriptionStatusActive || s == PrescriptionStatusDispensed
}

func (s PrescriptionStatus) String() string {
	return [...]string{"Active", "Dispensed", "Voided", "Expired"}[s]
}

func (s PrescriptionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PrescriptionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PrescriptionStatus(i)
		return nil
	}
	switch str {
	case "Active":
		*s = PrescriptionStatusActive
	case "Dispensed":
		*s = PrescriptionStatusDispensed
	case "Voided":
		*s = PrescriptionStatusVoided
	case "Expired":
		*s = PrescriptionStatusExpired
	}
	return nil
}

func (s PrescriptionStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PrescriptionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PrescriptionStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PrescriptionStatus(v)
	case int:
		*s = PrescriptionStatus(v)
	}
	return nil
}
