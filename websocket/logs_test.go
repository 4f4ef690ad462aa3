package websocket

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/stretchr/testify/require"
)

func TestHandlerWithLogsIncCounter(t *testing.T) {
	h := HandlerWithLogs(&TrackingHandler{}, time.Second).(*handlerWithLogs)
	defer h.Close()

	h.incCounter("test")
	require.Equal(t, 1, h.counter["test"])
}

func TestHandlerWithLogsLogSummary(t *testing.T) {
	testClientID := "test-client"
	h := HandlerWithLogs(&TrackingHandler{clientID: testClientID}, time.Second).(*handlerWithLogs)
	defer h.Close()

	h.incCounter("test-1")
	h.incCounter("test-1")
	h.incCounter("test-2")

	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		fmt.Fprint(&b, e)
	})

	h.logSummary()
	require.Empty(t, h.counter)

	logString := b.String()
	clientIDTag := fmt.Sprintf(`"%s":"%s"`, logs.ClientIDTag, testClientID)
	require.Contains(t, logString, `"test-1":2`)
	require.Contains(t, logString, `"test-2":1`)
	require.Contains(t, logString, clientIDTag)
	t.Log(b.String())
}

func TestHandlerWithLogsStartSummaryWorker(t *testing.T) {
	var wg sync.WaitGroup
	var once sync.Once

	var mutex sync.Mutex
	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		mutex.Lock()
		defer mutex.Unlock()

		fmt.Fprint(&b, e)
		once.Do(wg.Done)
	})

	wg.Add(1)
	h := HandlerWithLogs(&TrackingHandler{}, time.Millisecond).(*handlerWithLogs)
	defer h.Close()

	// No summary is logged until a counter is incremented.
	h.incCounter("test-1")

	wg.Wait()

	mutex.Lock()
	out := b.String()
	mutex.Unlock()

	require.NotEmpty(t, out)
	t.Log(out)
}

func TestHandlerWithLogsHandleDisconnect(t *testing.T) {
	session := models.NewSession(1)
	session.Update(spatial.Zero, []string{"monument-1"})
	session.Update(spatial.Vec3{X: 1}, []string{"monument-1"})

	h := HandlerWithLogs(&TrackingHandler{
		Sessions: &models.SessionStore{},
		session:  session,
		clientID: "test-client",
	}, time.Minute).(*handlerWithLogs)
	defer h.Close()

	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		fmt.Fprint(&b, e)
	})

	h.HandleDisconnect(nil)

	out := b.String()
	require.Contains(t, out, "client disconnected")
	require.Contains(t, out, `"position_updates":2`)
	require.Contains(t, out, `"monument-1"`)
}

func TestLoggingResponseSender(t *testing.T) {
	var logged, sent []MsgType

	s := loggingResponseSender{
		ResponseSender: responseSender{send: func(m Msg) { sent = append(sent, m.Type) }},
		log:            func(m Msg) { logged = append(logged, m.Type) },
	}

	s.Send(NewMsg(MsgTypeRegionEnter, 0))
	s.Send(NewMsg(MsgTypePositionResponse, 1))

	require.Equal(t, []MsgType{MsgTypeRegionEnter, MsgTypePositionResponse}, logged)
	require.Equal(t, logged, sent)
}
