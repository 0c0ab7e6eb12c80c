package request

// SettleItemRequest is one cart line in a settlement request
type SettleItemRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required,uuid"`
	Name            string  `json:"name" binding:"required"`
	UnitPrice       float64 `json:"unit_price" binding:"required,gte=0"`
	Quantity        int     `json:"quantity" binding:"required,min=1"`
}

// SettleBillRequest represents a bill settlement request
type SettleBillRequest struct {
	PrescriptionID string              `json:"prescription_id" binding:"required,uuid"`
	PatientName    string              `json:"patient_name"`
	PatientPhone   string              `json:"patient_phone"`
	TaxPercent     *float64            `json:"tax_percent" binding:"omitempty,gte=0,lte=100"`
	DiscountAmount float64             `json:"discount_amount" binding:"gte=0"`
	PaymentMethod  string              `json:"payment_method" binding:"required"`
	Items          []SettleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TaxPercentOrDefault returns the requested tax rate, or the pharmacy's
// configured default when the request leaves it unset. An explicit zero means
// tax-exempt and is honored as-is.
func (r *SettleBillRequest) TaxPercentOrDefault(fallback float64) float64 {
	if r.TaxPercent != nil {
		return *r.TaxPercent
	}
	return fallback
}
