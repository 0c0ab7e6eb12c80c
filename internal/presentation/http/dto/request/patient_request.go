package request

// PatientRequest represents create/update input for a patient
type PatientRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=255"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
}
