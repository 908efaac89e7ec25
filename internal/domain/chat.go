package domain

// ChatRequest is the inbound relay payload
type ChatRequest struct {
	Text      string `json:"text" validate:"required"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse is the relay envelope. Callers branch on Success; internal
// failures never surface as anything but this shape.
type ChatResponse struct {
	Success              bool   `json:"success"`
	Response             string `json:"response,omitempty"`
	SessionID            string `json:"sessionId,omitempty"`
	WasNewSessionCreated bool   `json:"wasNewSessionCreated"`
	Error                string `json:"error,omitempty"`
	Timestamp            string `json:"timestamp"`
}
