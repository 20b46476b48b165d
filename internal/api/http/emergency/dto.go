package emergency

import "github.com/medpass-app/medpass/internal/entity"

type dataOutput struct {
	Body DataResponse
}

type DataResponse struct {
	OK        bool                     `json:"ok"`
	Data      *entity.EmergencyProfile `json:"data"`
	UpdatedAt string                   `json:"updatedAt,omitempty"`
}

type qrInput struct {
	Body struct {
		Name                  string `json:"name,omitempty" maxLength:"200"`
		BloodGroup            string `json:"bloodGroup,omitempty" maxLength:"10"`
		Allergies             string `json:"allergies,omitempty" maxLength:"1000"`
		Medications           string `json:"medications,omitempty" maxLength:"1000"`
		EmergencyContactName  string `json:"emergencyContactName,omitempty" maxLength:"200"`
		EmergencyContactPhone string `json:"emergencyContactPhone,omitempty" maxLength:"32"`
	}
}

type qrOutput struct {
	Body QRResponse
}

type QRResponse struct {
	OK      bool   `json:"ok"`
	DataURL string `json:"dataUrl"`
	QRText  string `json:"qrText"`
}

type alertInput struct {
	Body struct {
		MessageOverride string `json:"messageOverride,omitempty" maxLength:"1000"`
	}
}

type alertOutput struct {
	Body AlertResponse
}

type AlertResponse struct {
	OK        bool `json:"ok"`
	Delivered bool `json:"delivered"`
	Limited   bool `json:"limited,omitempty"`
}
