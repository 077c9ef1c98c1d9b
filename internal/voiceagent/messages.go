// Package voiceagent speaks the hosted voice agent's websocket protocol:
// binary frames carry audio, text frames carry JSON documents tagged by "type".
package voiceagent

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Inbound message types
const (
	TypeWelcome             = "Welcome"
	TypeSettingsApplied     = "SettingsApplied"
	TypeUserStartedSpeaking = "UserStartedSpeaking"
	TypeConversationText    = "ConversationText"
	TypeFunctionCallRequest = "FunctionCallRequest"
	TypeAgentThinking       = "AgentThinking"
	TypeAgentStartedSpeak   = "AgentStartedSpeaking"
	TypeAgentAudioDone      = "AgentAudioDone"
	TypeError               = "Error"
	TypeWarning             = "Warning"

	TypeFunctionCallResponse = "FunctionCallResponse"
)

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a decoded inbound control document. The concrete type is one of
// SpeechStarted, Transcript, FunctionCallRequest, Notice or Unhandled.
type Message interface {
	Type() string
}

type (
	// SpeechStarted signals that the caller started talking over playback.
	SpeechStarted struct{}

	// Transcript is one utterance of the conversation.
	Transcript struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// FunctionCallRequest asks the bridge to run one or more functions.
	FunctionCallRequest struct {
		Functions []FunctionCall `json:"functions"`
	}

	FunctionCall struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		Arguments  json.RawMessage `json:"arguments"`
		ClientSide *bool           `json:"client_side,omitempty"`
	}

	// Notice is an Error or Warning reported by the agent service.
	Notice struct {
		Kind        string `json:"type"`
		Description string `json:"description"`
		Code        string `json:"code"`
		Message     string `json:"message"`
	}

	// Unhandled is any document the bridge does not act on.
	Unhandled struct {
		Kind string
		Raw  json.RawMessage
	}
)

func (SpeechStarted) Type() string       { return TypeUserStartedSpeaking }
func (Transcript) Type() string          { return TypeConversationText }
func (FunctionCallRequest) Type() string { return TypeFunctionCallRequest }
func (n Notice) Type() string            { return n.Kind }
func (u Unhandled) Type() string         { return u.Kind }

// Text returns the most descriptive field of the notice.
func (n Notice) Text() string {
	switch {
	case n.Description != "":
		return n.Description
	case n.Message != "":
		return n.Message
	default:
		return n.Code
	}
}

// Decode parses an inbound text frame.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("voiceagent: decode message: %w", err)
	}

	switch probe.Type {
	case TypeUserStartedSpeaking:
		return SpeechStarted{}, nil
	case TypeConversationText:
		var m Transcript
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("voiceagent: decode %s: %w", probe.Type, err)
		}
		return m, nil
	case TypeFunctionCallRequest:
		var m FunctionCallRequest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("voiceagent: decode %s: %w", probe.Type, err)
		}
		return m, nil
	case TypeError, TypeWarning:
		var m Notice
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("voiceagent: decode %s: %w", probe.Type, err)
		}
		return m, nil
	default:
		return Unhandled{Kind: probe.Type, Raw: data}, nil
	}
}

// ArgumentJSON returns the call's argument object. The protocol sends it as a
// JSON-encoded string; a bare object is accepted too.
// RunsOnClient reports whether the bridge must answer the call. Calls the
// agent service runs itself are marked client_side false; an absent flag
// means the bridge answers.
func (c FunctionCall) RunsOnClient() bool {
	return c.ClientSide == nil || *c.ClientSide
}

func (c FunctionCall) ArgumentJSON() (json.RawMessage, error) {
	raw := bytes.TrimSpace(c.Arguments)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.RawMessage("{}"), nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = bytes.TrimSpace([]byte(s))
		if len(raw) == 0 {
			return json.RawMessage("{}"), nil
		}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid arguments JSON: %.64q", raw)
	}
	if raw[0] != '{' {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	return json.RawMessage(raw), nil
}

// FunctionCallResponse answers one FunctionCall by id.
type FunctionCallResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// NewFunctionCallResponse builds a response document.
func NewFunctionCallResponse(id, name, content string) FunctionCallResponse {
	return FunctionCallResponse{
		Type:    TypeFunctionCallResponse,
		ID:      id,
		Name:    name,
		Content: content,
	}
}

// Encode marshals the response for a text frame.
func (r FunctionCallResponse) Encode() ([]byte, error) {
	return json.Marshal(r)
}
