package fixgate

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/engine"
	"github.com/avolkova/fix-exchange/internal/fix"
)

type testClient struct {
	t       *testing.T
	conn    net.Conn
	scanner *bufio.Scanner
}

func startSession(t *testing.T) (*testClient, *engine.Engine) {
	t.Helper()
	eng := engine.New(nil, nil, nil, nil)
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	sess := newSession(server, eng, zap.NewNop())
	go sess.run(context.Background())

	scanner := bufio.NewScanner(client)
	scanner.Split(splitFrames)
	return &testClient{t: t, conn: client, scanner: scanner}, eng
}

func (c *testClient) send(msg *fix.Message) {
	c.t.Helper()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := c.conn.Write([]byte(msg.Encode(fix.FieldDelimiter)))
	require.NoError(c.t, err)
}

func (c *testClient) recv() *fix.Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.True(c.t, c.scanner.Scan(), "expected a frame: %v", c.scanner.Err())
	return fix.Decode(c.scanner.Text(), fix.FieldDelimiter)
}

func orderMessage(symbol, side, qty, price string) *fix.Message {
	msg := fix.NewMessage()
	msg.Set(fix.TagBeginString, "FIX.4.2")
	msg.Set(fix.TagMsgType, fix.MsgTypeNewOrderSingle)
	msg.Set(fix.TagSenderCompID, "CLIENT")
	msg.Set(fix.TagTargetCompID, "EXCHANGE")
	msg.Set(fix.TagSymbol, symbol)
	msg.Set(fix.TagSide, side)
	msg.Set(fix.TagOrderQty, qty)
	msg.Set(fix.TagPrice, price)
	return msg
}

func field(t *testing.T, msg *fix.Message, tag fix.Tag) string {
	t.Helper()
	v, ok := msg.Get(tag)
	require.True(t, ok, "missing %s", tag.Name())
	return v
}

func TestSessionAcceptsOrderAndReportsFill(t *testing.T) {
	client, eng := startSession(t)

	client.send(orderMessage("AAPL", "1", "100", "150"))
	ack := client.recv()
	assert.Equal(t, fix.MsgTypeExecutionReport, field(t, ack, fix.TagMsgType))
	assert.Equal(t, "NEW", field(t, ack, fix.TagText))
	assert.Equal(t, "100", field(t, ack, fix.TagLeavesQty))
	assert.Equal(t, "0", field(t, ack, fix.TagCumQty))
	assert.Equal(t, "CLIENT", field(t, ack, fix.TagTargetCompID))
	_, hasExec := ack.Get(fix.TagExecID)
	assert.False(t, hasExec, "no executions, so no ExecID")

	client.send(orderMessage("AAPL", "2", "100", "150"))
	fill := client.recv()
	assert.Equal(t, "FILLED", field(t, fill, fix.TagText))
	assert.Equal(t, "0", field(t, fill, fix.TagLeavesQty))
	assert.Equal(t, "100", field(t, fill, fix.TagCumQty))
	assert.Equal(t, "150", field(t, fill, fix.TagAvgPx))
	assert.Equal(t, "1", field(t, fill, fix.TagExecID))

	assert.Empty(t, eng.OpenOrders("AAPL"))
}

func TestSessionReportsPartialFill(t *testing.T) {
	client, eng := startSession(t)

	client.send(orderMessage("AAPL", "1", "100", "200"))
	client.recv()

	client.send(orderMessage("AAPL", "2", "150", "200"))
	report := client.recv()
	assert.Equal(t, "PARTIALLY FILLED", field(t, report, fix.TagText))
	assert.Equal(t, "50", field(t, report, fix.TagLeavesQty))
	assert.Equal(t, "100", field(t, report, fix.TagCumQty))

	open := eng.OpenOrders("AAPL")
	require.Len(t, open, 1)
	assert.Equal(t, uint64(50), open[0].Quantity)
}

func TestSessionCancelFlow(t *testing.T) {
	client, eng := startSession(t)

	client.send(orderMessage("AAPL", "1", "100", "150"))
	ack := client.recv()
	orderID := field(t, ack, fix.TagOrderID)

	cancel := fix.NewMessage()
	cancel.Set(fix.TagMsgType, fix.MsgTypeOrderCancelRequest)
	cancel.Set(fix.TagSenderCompID, "CLIENT")
	cancel.Set(fix.TagOrderID, orderID)
	client.send(cancel)

	report := client.recv()
	assert.Equal(t, "CANCELLED", field(t, report, fix.TagText))
	assert.Equal(t, orderID, field(t, report, fix.TagOrderID))
	assert.Empty(t, eng.OpenOrders("AAPL"))
}

func TestSessionCancelUnknownOrder(t *testing.T) {
	client, _ := startSession(t)

	cancel := fix.NewMessage()
	cancel.Set(fix.TagMsgType, fix.MsgTypeOrderCancelRequest)
	cancel.Set(fix.TagSenderCompID, "CLIENT")
	cancel.Set(fix.TagOrderID, "999")
	client.send(cancel)

	report := client.recv()
	assert.Equal(t, "NOT FOUND", field(t, report, fix.TagText))
}

func TestSessionRejectsInvalidOrder(t *testing.T) {
	client, eng := startSession(t)

	msg := orderMessage("AAPL", "7", "100", "150") // side 7 is not a side
	client.send(msg)
	reject := client.recv()
	assert.Equal(t, fix.MsgTypeReject, field(t, reject, fix.TagMsgType))
	assert.Empty(t, eng.OpenOrders("AAPL"))
}

type writeBrokenConn struct {
	net.Conn
}

func (c writeBrokenConn) Write(b []byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestSessionShutsDownWhenSendFails(t *testing.T) {
	eng := engine.New(nil, nil, nil, nil)
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	sess := newSession(writeBrokenConn{server}, eng, zap.NewNop())
	done := make(chan struct{})
	go func() {
		sess.run(context.Background())
		close(done)
	}()

	// The reply to this order cannot be written; the session must tear the
	// connection down rather than keep reading.
	client.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := client.Write([]byte(orderMessage("AAPL", "1", "100", "150").Encode(fix.FieldDelimiter)))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session kept running after a send failure")
	}
}

func TestSessionRejectsUnsupportedMsgType(t *testing.T) {
	client, _ := startSession(t)

	msg := fix.NewMessage()
	msg.Set(fix.TagMsgType, "A")
	msg.Set(fix.TagSenderCompID, "CLIENT")
	client.send(msg)

	reject := client.recv()
	assert.Equal(t, fix.MsgTypeReject, field(t, reject, fix.TagMsgType))
}
