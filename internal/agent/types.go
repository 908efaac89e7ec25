package agent

// Wire shapes for the agent backend's HTTP surface.

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	ID        string `json:"id"`
}

type runRequest struct {
	AppName    string       `json:"appName"`
	UserID     string       `json:"userId"`
	SessionID  string       `json:"sessionId"`
	NewMessage runMessage   `json:"newMessage"`
	Streaming  bool         `json:"streaming"`
	StateDelta runStateData `json:"stateDelta"`
}

type runMessage struct {
	Role  string    `json:"role"`
	Parts []runPart `json:"parts"`
}

type runPart struct {
	Text string `json:"text"`
}

// runStateData is the side-channel bundle the agent's before_agent callback
// reads into session state.
type runStateData struct {
	SessionMetadata sessionMetadata `json:"sessionMetadata"`
}

type sessionMetadata struct {
	SessionID string `json:"sessionId"`
	UserKey   string `json:"userKey"`
	ChatID    string `json:"chatId,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

type errorBody struct {
	Detail string `json:"detail"`
}
