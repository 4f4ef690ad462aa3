package websocket

import (
	"testing"
	"time"

	"github.com/aukilabs/monumentfinder/config"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/registry"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

const (
	alphaPrefab = "assets/bundled/prefabs/autospawn/monument/test/alpha.prefab"
	betaPrefab  = "assets/bundled/prefabs/autospawn/monument/test/beta.prefab"
)

func newTestRegistry() *registry.Registry {
	return registry.Build(models.World{
		Monuments: []models.MonumentMarker{
			{
				PrefabName: alphaPrefab,
				Bounds:     models.Box{Size: models.Vector3{X: 2, Y: 2, Z: 2}},
			},
			{
				PrefabName: betaPrefab,
				Position:   models.Vector3{X: 100},
				Bounds:     models.Box{Size: models.Vector3{X: 2, Y: 2, Z: 2}},
			},
		},
	}, config.New(), registry.Options{})
}

func newTestHandler(sessions *models.SessionStore, idleTimeout time.Duration) func() Handler {
	reg := newTestRegistry()

	return func() Handler {
		var h Handler = &TrackingHandler{
			Registry:                reg,
			Sessions:                sessions,
			ClientHeartbeatInterval: time.Millisecond * 250,
			ClientIdleTimeout:       idleTimeout,
		}

		h = HandlerWithLogs(h, time.Millisecond*100)
		h = HandlerWithMetrics(h, "http://localhost:4000")
		return h
	}
}

func position(x, y, z float64) *models.Vector3 {
	return &models.Vector3{X: x, Y: y, Z: z}
}

func TestHandlerSendHeartbeat(t *testing.T) {
	client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
	defer close()

	msg := ReceiveTestMsg(t, client, MsgTypeHeartbeat)
	require.NotZero(t, msg.Timestamp)
}

func TestHandlerHandlePing(t *testing.T) {
	client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
	defer close()

	SendTestMsg(t, client, Msg{Type: MsgTypePingRequest, RequestID: 1})

	res := ReceiveTestMsg(t, client, MsgTypePingResponse)
	require.Equal(t, uint32(1), res.RequestID)
}

func TestHandlerUnknownMsgType(t *testing.T) {
	client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
	defer close()

	SendTestMsg(t, client, Msg{Type: "teleport", RequestID: 7})

	res := ReceiveTestMsg(t, client, MsgTypeErrorResponse)
	require.Equal(t, uint32(7), res.RequestID)
	require.Equal(t, ErrTypeUnknownMsgType, res.ErrorType)

	// The connection stays usable.
	SendTestMsg(t, client, Msg{Type: MsgTypePingRequest, RequestID: 8})
	require.Equal(t, uint32(8), ReceiveTestMsg(t, client, MsgTypePingResponse).RequestID)
}

func TestTrackingHandlerPositionUpdate(t *testing.T) {
	sessions := &models.SessionStore{}
	client, close := NewTestingEnv(t, newTestHandler(sessions, time.Minute))
	defer close()

	SendTestMsg(t, client, Msg{
		Type:      MsgTypePositionUpdate,
		RequestID: 1,
		Position:  position(0.5, 0, 0),
	})

	enter := ReceiveTestMsg(t, client, MsgTypeRegionEnter)
	require.NotNil(t, enter.Region)
	require.Equal(t, alphaPrefab, enter.Region.PrefabName)

	res := ReceiveTestMsg(t, client, MsgTypePositionResponse)
	require.Equal(t, uint32(1), res.RequestID)
	require.Equal(t, []string{enter.Region.ID}, res.Regions)

	SendTestMsg(t, client, Msg{
		Type:      MsgTypePositionUpdate,
		RequestID: 2,
		Position:  position(0.8, 0, 0),
	})

	res = ReceiveTestMsg(t, client, MsgTypePositionResponse)
	require.Equal(t, uint32(2), res.RequestID)
	require.Equal(t, []string{enter.Region.ID}, res.Regions)

	SendTestMsg(t, client, Msg{
		Type:      MsgTypePositionUpdate,
		RequestID: 3,
		Position:  position(40, 0, 0),
	})

	leave := ReceiveTestMsg(t, client, MsgTypeRegionLeave)
	require.NotNil(t, leave.Region)
	require.Equal(t, enter.Region.ID, leave.Region.ID)

	res = ReceiveTestMsg(t, client, MsgTypePositionResponse)
	require.Equal(t, uint32(3), res.RequestID)
	require.Empty(t, res.Regions)

	require.Equal(t, 1, sessions.Len())
}

func TestTrackingHandlerPositionUpdateWithoutPosition(t *testing.T) {
	client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
	defer close()

	SendTestMsg(t, client, Msg{Type: MsgTypePositionUpdate, RequestID: 1})

	res := ReceiveTestMsg(t, client, MsgTypeErrorResponse)
	require.Equal(t, ErrTypeMsgInvalid, res.ErrorType)
}

func TestTrackingHandlerNearest(t *testing.T) {
	t.Run("without any position", func(t *testing.T) {
		client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
		defer close()

		SendTestMsg(t, client, Msg{Type: MsgTypeNearestRequest, RequestID: 1})

		res := ReceiveTestMsg(t, client, MsgTypeErrorResponse)
		require.Equal(t, ErrTypeNoPosition, res.ErrorType)
	})

	t.Run("unknown category", func(t *testing.T) {
		client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
		defer close()

		SendTestMsg(t, client, Msg{
			Type:      MsgTypeNearestRequest,
			RequestID: 1,
			Category:  "volcano",
			Position:  position(0, 0, 0),
		})

		res := ReceiveTestMsg(t, client, MsgTypeErrorResponse)
		require.Equal(t, registry.ErrTypeUnknownCategory, res.ErrorType)
	})

	t.Run("from last reported position", func(t *testing.T) {
		client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
		defer close()

		SendTestMsg(t, client, Msg{
			Type:      MsgTypePositionUpdate,
			RequestID: 1,
			Position:  position(70, 0, 0),
		})
		ReceiveTestMsg(t, client, MsgTypePositionResponse)

		SendTestMsg(t, client, Msg{
			Type:      MsgTypeNearestRequest,
			RequestID: 2,
			Category:  "monument",
		})

		res := ReceiveTestMsg(t, client, MsgTypeNearestResponse)
		require.Equal(t, uint32(2), res.RequestID)
		require.NotNil(t, res.Region)
		require.Equal(t, betaPrefab, res.Region.PrefabName)
		require.NotNil(t, res.Distance)
		require.InDelta(t, 29, *res.Distance, 1e-9)
	})

	t.Run("empty category", func(t *testing.T) {
		client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
		defer close()

		SendTestMsg(t, client, Msg{
			Type:      MsgTypeNearestRequest,
			RequestID: 1,
			Category:  "lab_module",
			Position:  position(0, 0, 0),
		})

		res := ReceiveTestMsg(t, client, MsgTypeNearestResponse)
		require.Nil(t, res.Region)
	})
}

func TestTrackingHandlerClosest(t *testing.T) {
	client, close := NewTestingEnv(t, newTestHandler(&models.SessionStore{}, time.Minute))
	defer close()

	SendTestMsg(t, client, Msg{
		Type:      MsgTypeClosestRequest,
		RequestID: 1,
		Position:  position(100.5, 0, 0),
	})

	res := ReceiveTestMsg(t, client, MsgTypeClosestResponse)
	require.NotNil(t, res.Region)
	require.Equal(t, betaPrefab, res.Region.PrefabName)
	require.NotNil(t, res.Inside)
	require.True(t, *res.Inside)
	require.NotNil(t, res.RelativePosition)
	require.InDelta(t, 0.5, res.RelativePosition.X, 1e-9)

	SendTestMsg(t, client, Msg{
		Type:      MsgTypeClosestRequest,
		RequestID: 2,
		Position:  position(-11, 0, 0),
	})

	res = ReceiveTestMsg(t, client, MsgTypeClosestResponse)
	require.Equal(t, alphaPrefab, res.Region.PrefabName)
	require.False(t, *res.Inside)
	require.Nil(t, res.RelativePosition)
	require.InDelta(t, 10, *res.Distance, 1e-9)
}

func TestHandlerIdleTimeout(t *testing.T) {
	sessions := &models.SessionStore{}
	client, close := NewTestingEnv(t, newTestHandler(sessions, time.Millisecond*100))
	defer close()

	client.SetReadDeadline(time.Now().Add(time.Second * 5))

	var err error
	for err == nil {
		var b []byte
		err = websocket.Message.Receive(client, &b)
	}
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return sessions.Len() == 0
	}, time.Second, time.Millisecond*10)
}
