package record

import (
	"encoding/json"

	"github.com/medpass-app/medpass/internal/entity"
)

type manualInput struct {
	Body struct {
		Title string `json:"title" maxLength:"300"`
		Text  string `json:"text" minLength:"1"`
	}
}

type recordOutput struct {
	Body RecordResponse
}

type RecordResponse struct {
	OK     bool           `json:"ok"`
	Record entity.Payload `json:"record"`
}

type createInput struct {
	RawBody json.RawMessage `contentType:"application/json"`
}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	OK      bool             `json:"ok"`
	Records []entity.Payload `json:"records"`
}

type deleteInput struct {
	ID string `path:"id" maxLength:"100"`
}

type deleteOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}
