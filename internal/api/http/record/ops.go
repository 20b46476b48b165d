package record

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) manualOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-manual",
		Method:      http.MethodPost,
		Path:        "/api/records/manual",
		Summary:     "Ingest pasted text as a record",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-create",
		Method:      http.MethodPost,
		Path:        "/api/records",
		Summary:     "Store an already-structured record",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-list",
		Method:      http.MethodGet,
		Path:        "/api/records",
		Summary:     "List the user's records, decrypted, newest first",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "records-delete",
		Method:      http.MethodDelete,
		Path:        "/api/records/{id}",
		Summary:     "Delete a record and its uploaded file",
		Tags:        []string{"records"},
		Middlewares: h.middleware,
	}
}
