// Package pilot dispatches workflow tasks to an external pilot-job
// resource manager through a coordination endpoint. Task descriptions are
// framed and pushed to the coordinator; completion is awaited per task,
// never for the session as a whole.
package pilot

import (
	"time"

	scalems "github.com/eirrgang/scale-ms"
)

// FrameType identifies the frame category.
type FrameType string

const (
	FrameSubmit FrameType = "submit"
	FrameResult FrameType = "result"
	FrameErr    FrameType = "error"
)

// Frame is the coordination message envelope exchanged with the remote
// executor.
type Frame struct {
	// ID uniquely identifies this frame.
	ID string `json:"id" msgpack:"id"`

	// Type categorizes the frame.
	Type FrameType `json:"type" msgpack:"type"`

	// Session scopes the frame to one pilot session.
	Session string `json:"session,omitempty" msgpack:"session,omitempty"`

	// Task carries the task description for submit frames.
	Task *scalems.Task `json:"task,omitempty" msgpack:"task,omitempty"`

	// Result carries the outcome for result frames.
	Result *scalems.Result `json:"result,omitempty" msgpack:"result,omitempty"`

	// Error carries a failure report for error frames.
	Error string `json:"error,omitempty" msgpack:"error,omitempty"`

	// Timestamp records when this frame was created.
	Timestamp time.Time `json:"ts" msgpack:"ts"`
}

// Codec serializes coordination frames.
type Codec interface {
	// Encode serializes a frame to bytes.
	Encode(frame *Frame) ([]byte, error)

	// Decode deserializes bytes into a frame.
	Decode(data []byte) (*Frame, error)

	// Name returns the codec identifier.
	Name() string
}

// Codec name constants for format negotiation.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. Defaults to JSON.
func GetCodec(name string) Codec {
	switch name {
	case CodecNameMsgpack:
		return &MsgpackCodec{}
	default:
		return &JSONCodec{}
	}
}
