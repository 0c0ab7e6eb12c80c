package request

// CreatePrescriptionRequest represents a new prescription
type CreatePrescriptionRequest struct {
	PatientID  *string `json:"patient_id" binding:"omitempty,uuid"`
	DoctorName string  `json:"doctor_name" binding:"required,min=2,max=255"`
	Notes      *string `json:"notes"`
	IssuedAt   string  `json:"issued_at"` // YYYY-MM-DD, defaults to today
}
