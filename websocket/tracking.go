package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/monument"
	"github.com/aukilabs/monumentfinder/registry"
	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

const (
	// The header where clients can give their own identifier.
	ClientIDHeader = "X-Client-ID"

	ErrTypeNoPosition = "no_position"
)

// TrackingHandler follows the position streamed by a client and notifies it
// when it enters or leaves a region.
type TrackingHandler struct {
	// The regions positions are tested against.
	Registry *registry.Registry

	// The store that contains the tracking sessions.
	Sessions *models.SessionStore

	// The interval between each heartbeat message sent to the connected
	// client.
	ClientHeartbeatInterval time.Duration

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	conn     *websocket.Conn
	session  *models.Session
	clientID string
}

func (h *TrackingHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn

	h.clientID = conn.Request().Header.Get(ClientIDHeader)
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}

	h.session = h.Sessions.New()
}

func (h *TrackingHandler) HandleDisconnect(_ error) {
	if h.session != nil {
		h.Sessions.Remove(h.session)
	}
}

func (h *TrackingHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	respond.Send(NewMsg(MsgTypePingResponse, msg.RequestID))
	return nil
}

func (h *TrackingHandler) HandlePositionUpdate(ctx context.Context, respond ResponseSender, msg Msg) error {
	if msg.Position == nil {
		respond.Send(NewErrorMsg(msg.RequestID, errors.New("position update without position").
			WithType(ErrTypeMsgInvalid)))
		return nil
	}
	p := msg.Position.Vec()

	var inside []string
	for _, a := range h.Registry.Set(registry.CategoryAll) {
		if a.IsInBounds(p) {
			inside = append(inside, a.ID)
		}
	}

	entered, left := h.session.Update(p, inside)

	for _, id := range left {
		res := NewMsg(MsgTypeRegionLeave, 0)
		res.Region = h.view(id)
		respond.Send(res)
		instrumentRegionTransition(MsgTypeRegionLeave, res.Region)
	}

	for _, id := range entered {
		res := NewMsg(MsgTypeRegionEnter, 0)
		res.Region = h.view(id)
		respond.Send(res)
		instrumentRegionTransition(MsgTypeRegionEnter, res.Region)
	}

	res := NewMsg(MsgTypePositionResponse, msg.RequestID)
	res.Regions = h.session.Regions()
	respond.Send(res)
	return nil
}

func (h *TrackingHandler) HandleNearest(ctx context.Context, respond ResponseSender, msg Msg) error {
	c, err := registry.ParseCategory(msg.Category)
	if err != nil {
		respond.Send(NewErrorMsg(msg.RequestID, err))
		return nil
	}

	p, err := h.requestPosition(msg)
	if err != nil {
		respond.Send(NewErrorMsg(msg.RequestID, err))
		return nil
	}

	res := NewMsg(MsgTypeNearestResponse, msg.RequestID)
	if a, ok := h.Registry.Nearest(c, p); ok {
		view := a.View()
		distance := spatial.Distance(p, a.ClosestPointOnBounds(p))

		res.Region = &view
		res.Distance = &distance
	}

	respond.Send(res)
	return nil
}

func (h *TrackingHandler) HandleClosest(ctx context.Context, respond ResponseSender, msg Msg) error {
	p, err := h.requestPosition(msg)
	if err != nil {
		respond.Send(NewErrorMsg(msg.RequestID, err))
		return nil
	}

	res := NewMsg(MsgTypeClosestResponse, msg.RequestID)
	if report, ok := h.Registry.Closest(p); ok {
		view := report.Adapter.View()
		inside := report.Inside
		distance := report.Distance

		res.Region = &view
		res.Inside = &inside
		res.Distance = &distance

		if inside {
			relative := models.NewVector3(report.RelativePosition)
			res.RelativePosition = &relative
		}
	}

	respond.Send(res)
	return nil
}

func (h *TrackingHandler) SendHeartbeat(ctx context.Context, respond ResponseSender) error {
	respond.Send(NewMsg(MsgTypeHeartbeat, 0))
	return nil
}

func (h *TrackingHandler) Receiver() Receiver {
	return NewReceiver(h.conn)
}

func (h *TrackingHandler) Sender() Sender {
	return NewSender(h.conn)
}

func (h *TrackingHandler) Close() {
}

func (h *TrackingHandler) HeartbeatInterval() time.Duration {
	return h.ClientHeartbeatInterval
}

func (h *TrackingHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *TrackingHandler) CurrentSession() *models.Session {
	return h.session
}

func (h *TrackingHandler) GetClientID() string {
	return h.clientID
}

// requestPosition returns the position of the request or, when absent, the
// last position reported by the client.
func (h *TrackingHandler) requestPosition(msg Msg) (spatial.Vec3, error) {
	if msg.Position != nil {
		return msg.Position.Vec(), nil
	}

	if h.session != nil {
		if p, ok := h.session.Position(); ok {
			return p, nil
		}
	}

	return spatial.Vec3{}, errors.New("no position given nor reported").
		WithType(ErrTypeNoPosition)
}

func (h *TrackingHandler) view(id string) *monument.View {
	a, ok := h.Registry.Get(id)
	if !ok {
		return &monument.View{ID: id}
	}

	view := a.View()
	return &view
}
