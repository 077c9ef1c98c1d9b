// Package telephony encodes and decodes the JSON events of a telephony
// media stream websocket.
package telephony

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// Event names
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventStop      = "stop"
	EventMark      = "mark"
	EventClear     = "clear"
	EventDTMF      = "dtmf"
)

// TrackInbound marks audio spoken by the caller.
const TrackInbound = "inbound"

// Inbound stream event types
type (
	Event struct {
		Event          string `json:"event"`
		SequenceNumber string `json:"sequenceNumber,omitempty"`
		StreamSID      string `json:"streamSid,omitempty"`
		Start          *Start `json:"start,omitempty"`
		Media          *Media `json:"media,omitempty"`
		Stop           *Stop  `json:"stop,omitempty"`
	}

	Start struct {
		StreamSID        string            `json:"streamSid"`
		CallSID          string            `json:"callSid,omitempty"`
		AccountSID       string            `json:"accountSid,omitempty"`
		Tracks           []string          `json:"tracks,omitempty"`
		MediaFormat      *MediaFormat      `json:"mediaFormat,omitempty"`
		CustomParameters map[string]string `json:"customParameters,omitempty"`
	}

	MediaFormat struct {
		Encoding   string `json:"encoding"`
		SampleRate int    `json:"sampleRate"`
		Channels   int    `json:"channels"`
	}

	Media struct {
		Track     string `json:"track,omitempty"`
		Chunk     string `json:"chunk,omitempty"`
		Timestamp string `json:"timestamp,omitempty"`
		Payload   string `json:"payload"`
	}

	Stop struct {
		CallSID    string `json:"callSid,omitempty"`
		AccountSID string `json:"accountSid,omitempty"`
	}
)

var errNoEvent = errors.New("telephony: message has no event field")

// Decode parses one inbound text frame. Events the bridge depends on are
// checked for the fields it reads.
func Decode(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("telephony: decode event: %w", err)
	}
	switch ev.Event {
	case "":
		return nil, errNoEvent
	case EventStart:
		if ev.Start == nil || ev.Start.StreamSID == "" {
			return nil, fmt.Errorf("telephony: start event without streamSid")
		}
	case EventMedia:
		if ev.Media == nil {
			return nil, fmt.Errorf("telephony: media event without media")
		}
	}
	return &ev, nil
}

// Inbound reports whether the media was spoken by the caller.
func (m *Media) Inbound() bool {
	return m.Track == TrackInbound
}

// Audio decodes the base64 payload.
func (m *Media) Audio() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("telephony: decode media payload: %w", err)
	}
	return b, nil
}

// Outbound event types
type (
	outboundMedia struct {
		Event     string        `json:"event"`
		StreamSID string        `json:"streamSid"`
		Media     outboundAudio `json:"media"`
	}

	outboundAudio struct {
		Payload string `json:"payload"`
	}

	clearEvent struct {
		Event     string `json:"event"`
		StreamSID string `json:"streamSid"`
	}
)

// MediaEvent builds a playback event carrying audio for the caller.
func MediaEvent(streamSID string, audio []byte) ([]byte, error) {
	return json.Marshal(outboundMedia{
		Event:     EventMedia,
		StreamSID: streamSID,
		Media:     outboundAudio{Payload: base64.StdEncoding.EncodeToString(audio)},
	})
}

// ClearEvent builds the event that discards audio queued for playback.
func ClearEvent(streamSID string) ([]byte, error) {
	return json.Marshal(clearEvent{Event: EventClear, StreamSID: streamSID})
}
