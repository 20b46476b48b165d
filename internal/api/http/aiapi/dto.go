package aiapi

import (
	"github.com/medpass-app/medpass/internal/ai"
	"github.com/medpass-app/medpass/internal/entity"
)

type predictInput struct {
	Body ai.PredictInput
}

type predictOutput struct {
	Body PredictResponse
}

type PredictResponse struct {
	OK         bool              `json:"ok"`
	Prediction PredictionDetails `json:"prediction"`
}

type PredictionDetails struct {
	ID        string           `json:"id"`
	CreatedAt string           `json:"createdAt"`
	Input     ai.PredictInput  `json:"input"`
	Result    ai.PredictResult `json:"result"`
}

type summaryOutput struct {
	Body SummaryResponse
}

type SummaryResponse struct {
	OK        bool        `json:"ok"`
	ID        string      `json:"id,omitempty"`
	CreatedAt string      `json:"createdAt,omitempty"`
	Summary   *ai.Summary `json:"summary"`
}

type messageInput struct {
	Body struct {
		Message  string `json:"message" minLength:"1" maxLength:"4000"`
		Language string `json:"language,omitempty" maxLength:"8"`
	}
}

type messageOutput struct {
	Body MessageResponse
}

type MessageResponse struct {
	OK       bool   `json:"ok"`
	Reply    string `json:"reply"`
	Language string `json:"language"`
}

type historyOutput struct {
	Body HistoryResponse
}

type HistoryResponse struct {
	OK    bool                 `json:"ok"`
	Items []entity.ChatMessage `json:"items"`
}
