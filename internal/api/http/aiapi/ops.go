package aiapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) predictOp() huma.Operation {
	return huma.Operation{
		OperationID: "ai-predict",
		Method:      http.MethodPost,
		Path:        "/api/ai/predict",
		Summary:     "Run the rule-based health risk assessment",
		Tags:        []string{"ai"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) summaryOp() huma.Operation {
	return huma.Operation{
		OperationID: "ai-summary",
		Method:      http.MethodPost,
		Path:        "/api/ai/summary",
		Summary:     "Generate a medical summary from the user's records",
		Tags:        []string{"ai"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) latestSummaryOp() huma.Operation {
	return huma.Operation{
		OperationID: "ai-summary-latest",
		Method:      http.MethodGet,
		Path:        "/api/ai/summary/latest",
		Summary:     "Return the most recent stored summary",
		Tags:        []string{"ai"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) historyOp() huma.Operation {
	return huma.Operation{
		OperationID: "assistant-history",
		Method:      http.MethodGet,
		Path:        "/api/assistant/history",
		Summary:     "Return the assistant conversation",
		Tags:        []string{"assistant"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) messageOp() huma.Operation {
	return huma.Operation{
		OperationID: "assistant-message",
		Method:      http.MethodPost,
		Path:        "/api/assistant/message",
		Summary:     "Send a message to the assistant",
		Tags:        []string{"assistant"},
		Middlewares: h.middleware,
	}
}
