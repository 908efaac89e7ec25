package agent

import "encoding/json"

// NoResponseText is returned when no answer text can be located in a reply.
const NoResponseText = "no response received"

type turnEvent struct {
	Content *eventContent `json:"content"`
	Text    string        `json:"text"`
}

type eventContent struct {
	Parts []eventPart `json:"parts"`
}

type eventPart struct {
	Text string `json:"text"`
}

type messageObject struct {
	Message string `json:"message"`
}

type contentObject struct {
	Content string `json:"content"`
}

// ExtractText normalizes an agent backend reply into a single plain-text
// answer. The backend's reply shape varies between an array of turn events, a
// bare string, and flat message/content objects; the untyped form never leaves
// this function.
//
// Arrays are scanned from the last event backward so the most recent model
// utterance wins when one call returns multiple turns.
func ExtractText(payload json.RawMessage) string {
	if len(payload) == 0 {
		return NoResponseText
	}

	var events []turnEvent
	if err := json.Unmarshal(payload, &events); err == nil {
		for i := len(events) - 1; i >= 0; i-- {
			ev := events[i]
			if ev.Content != nil && len(ev.Content.Parts) > 0 && ev.Content.Parts[0].Text != "" {
				return ev.Content.Parts[0].Text
			}
			if ev.Text != "" {
				return ev.Text
			}
		}
		return NoResponseText
	}

	var plain string
	if err := json.Unmarshal(payload, &plain); err == nil {
		return plain
	}

	var msg messageObject
	if err := json.Unmarshal(payload, &msg); err == nil && msg.Message != "" {
		return msg.Message
	}

	var content contentObject
	if err := json.Unmarshal(payload, &content); err == nil && content.Content != "" {
		return content.Content
	}

	return NoResponseText
}
