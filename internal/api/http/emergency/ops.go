package emergency

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) dataOp() huma.Operation {
	return huma.Operation{
		OperationID: "emergency-data",
		Method:      http.MethodGet,
		Path:        "/api/emergency/data",
		Summary:     "Return the stored emergency profile",
		Tags:        []string{"emergency"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) qrOp() huma.Operation {
	return huma.Operation{
		OperationID: "emergency-qr",
		Method:      http.MethodPost,
		Path:        "/api/emergency/qr",
		Summary:     "Store the emergency profile and return its QR code",
		Tags:        []string{"emergency"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) alertOp() huma.Operation {
	return huma.Operation{
		OperationID: "emergency-alert",
		Method:      http.MethodPost,
		Path:        "/api/emergency/alert",
		Summary:     "Send an SMS alert to the emergency contact",
		Tags:        []string{"emergency"},
		Middlewares: h.middleware,
	}
}
