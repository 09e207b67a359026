package models

type ChatRequest struct {
	Message    string `json:"message"`
	SessionKey string `json:"session_key,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
