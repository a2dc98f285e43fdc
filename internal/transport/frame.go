package transport

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type FrameType string

const (
	FrameConnect FrameType = "connect"
	FrameAccept  FrameType = "accept"
	FrameData    FrameType = "data"
	FrameClose   FrameType = "close"
	FrameError   FrameType = "error"
)

// Frame is what link adapters exchange on the wire. Payload is carried
// as is for data frames and holds the error text for error frames.
type Frame struct {
	Type    FrameType `json:"type"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	Payload []byte    `json:"payload,omitempty"`
}

func (f *Frame) Marshal() ([]byte, error) {
	payload, err := json.Marshal(f)
	return payload, errors.Wrap(err, "failed to marshal frame")
}

func UnmarshalFrame(payload []byte) (*Frame, error) {
	frame := Frame{}
	err := json.Unmarshal(payload, &frame)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal frame")
	}
	if frame.Type == "" {
		return nil, errors.New("frame without type")
	}
	return &frame, nil
}

// Error maps an error frame back to a transport error.
func (f *Frame) Err() error {
	if f.Type != FrameError {
		return nil
	}
	switch string(f.Payload) {
	case ErrPeerUnavailable.Error():
		return ErrPeerUnavailable
	case ErrIdentifierTaken.Error():
		return ErrIdentifierTaken
	case ErrLinkNotOpen.Error():
		return ErrLinkNotOpen
	default:
		return errors.New(string(f.Payload))
	}
}
