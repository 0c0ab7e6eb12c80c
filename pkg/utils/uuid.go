package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateItemCode generates a unique inventory item code
func GenerateItemCode() string {
	return "MED-" + strings.ToUpper(uuid.New().String()[:8])
}

// GeneratePrescriptionNumber generates a unique prescription number
func GeneratePrescriptionNumber() string {
	return "RX-" + strings.ToUpper(uuid.New().String()[:8])
}
