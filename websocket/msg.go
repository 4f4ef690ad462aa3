package websocket

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/monument"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeMsgDecode      = "msg_decode_failed"
	ErrTypeMsgEncode      = "msg_encode_failed"
	ErrTypeMsgInvalid     = "msg_invalid"
	ErrTypeUnknownMsgType = "unknown_msg_type"
)

// MsgType identifies the content of a message.
type MsgType string

const (
	MsgTypePingRequest      MsgType = "ping_request"
	MsgTypePingResponse     MsgType = "ping_response"
	MsgTypeHeartbeat        MsgType = "heartbeat"
	MsgTypePositionUpdate   MsgType = "position_update"
	MsgTypePositionResponse MsgType = "position_response"
	MsgTypeRegionEnter      MsgType = "region_enter"
	MsgTypeRegionLeave      MsgType = "region_leave"
	MsgTypeNearestRequest   MsgType = "nearest_request"
	MsgTypeNearestResponse  MsgType = "nearest_response"
	MsgTypeClosestRequest   MsgType = "closest_request"
	MsgTypeClosestResponse  MsgType = "closest_response"
	MsgTypeErrorResponse    MsgType = "error_response"
)

// Msg is a JSON frame exchanged with a tracking client. Fields other than
// Type are set depending on the message type.
type Msg struct {
	Type      MsgType `json:"type"`
	RequestID uint32  `json:"request_id,omitempty"`

	// Unix time in milliseconds at which the message was created.
	Timestamp int64 `json:"timestamp,omitempty"`

	Position *models.Vector3 `json:"position,omitempty"`
	Category string          `json:"category,omitempty"`

	// IDs of the regions containing the last reported position.
	Regions []string `json:"regions,omitempty"`

	Region           *monument.View  `json:"region,omitempty"`
	Inside           *bool           `json:"inside,omitempty"`
	RelativePosition *models.Vector3 `json:"relative_position,omitempty"`
	Distance         *float64        `json:"distance,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// NewMsg returns a message of the given type stamped with the current time.
func NewMsg(t MsgType, requestID uint32) Msg {
	return Msg{
		Type:      t,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewErrorMsg returns an error response for the given request.
func NewErrorMsg(requestID uint32, err error) Msg {
	msg := NewMsg(MsgTypeErrorResponse, requestID)
	msg.Error = err.Error()
	msg.ErrorType = errors.Type(err)
	return msg
}

func (m Msg) TypeString() string {
	if m.Type == "" {
		return "unknown"
	}
	return string(m.Type)
}

// Receiver returns the next message and the number of bytes read.
type Receiver func() (Msg, int, error)

// Sender writes a message and returns the number of bytes written.
type Sender func(Msg) (int, error)

// ResponseSender queues messages to be sent to a client.
type ResponseSender interface {
	Send(Msg)
}

// NewReceiver returns a receiver that decodes JSON text frames from conn.
func NewReceiver(conn *websocket.Conn) Receiver {
	return func() (Msg, int, error) {
		var b []byte
		if err := websocket.Message.Receive(conn, &b); err != nil {
			return Msg{}, 0, err
		}

		var msg Msg
		if err := json.Unmarshal(b, &msg); err != nil {
			return Msg{}, len(b), errors.New("decoding message failed").
				WithType(ErrTypeMsgDecode).
				Wrap(err)
		}
		return msg, len(b), nil
	}
}

// NewSender returns a sender that encodes messages as JSON text frames.
func NewSender(conn *websocket.Conn) Sender {
	return func(msg Msg) (int, error) {
		b, err := json.Marshal(msg)
		if err != nil {
			return 0, errors.New("encoding message failed").
				WithType(ErrTypeMsgEncode).
				WithTag("msg_type", msg.TypeString()).
				Wrap(err)
		}

		if err := websocket.Message.Send(conn, string(b)); err != nil {
			return 0, err
		}
		return len(b), nil
	}
}
