package entity

// EmergencyProfile is the plaintext emergency card sealed per user.
// Field names mirror the JSON the clients exchange.
type EmergencyProfile struct {
	UserID                string `json:"userId"`
	Name                  string `json:"name"`
	BloodGroup            string `json:"bloodGroup"`
	Allergies             string `json:"allergies"`
	Medications           string `json:"medications"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	UpdatedAt             string `json:"updatedAt"`
}
