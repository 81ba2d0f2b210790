package fixgate

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/engine"
	"github.com/avolkova/fix-exchange/internal/fix"
)

// session owns one client connection: a receiver loop framing inbound bytes
// on the 0x01 terminator, inline processing, and a sender goroutine draining
// the outbound queue.
type session struct {
	id   string
	conn net.Conn
	eng  *engine.Engine
	log  *zap.Logger
	out  chan string
}

func newSession(conn net.Conn, eng *engine.Engine, log *zap.Logger) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		eng:  eng,
		log:  log,
		out:  make(chan string, 16),
	}
}

// splitFrames is a bufio.SplitFunc cutting the stream at each 0x01 byte.
func splitFrames(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, 0x01); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (s *session) run(ctx context.Context) {
	defer s.conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range s.out {
			if _, err := s.conn.Write([]byte(msg)); err != nil {
				s.log.Warn("send failed", zap.String("session", s.id), zap.Error(err))
				// unblock the receive loop; outbound traffic has nowhere to go
				s.conn.Close()
				return
			}
		}
	}()

	scanner := bufio.NewScanner(s.conn)
	scanner.Split(splitFrames)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		raw := scanner.Text()
		if len(raw) == 0 {
			continue
		}
		s.process(ctx, raw)
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn("receive failed", zap.String("session", s.id), zap.Error(err))
	}
	close(s.out)
	<-done
	s.log.Info("client disconnected", zap.String("session", s.id))
}

func (s *session) process(ctx context.Context, raw string) {
	msg := fix.Decode(raw, fix.FieldDelimiter)
	msgType, _ := msg.Get(fix.TagMsgType)
	switch msgType {
	case fix.MsgTypeNewOrderSingle:
		s.handleNewOrder(ctx, msg)
	case fix.MsgTypeOrderCancelRequest:
		s.handleCancel(ctx, msg)
	default:
		s.log.Warn("unsupported message type",
			zap.String("session", s.id),
			zap.String("msg_type", msgType))
		s.send(s.reject(msg, "unsupported MsgType "+strconv.Quote(msgType)))
	}
}

func (s *session) handleNewOrder(ctx context.Context, msg *fix.Message) {
	order, err := msg.ToOrder(s.eng.Sequence())
	if err != nil {
		s.log.Warn("dropping invalid order",
			zap.String("session", s.id),
			zap.Error(err))
		s.send(s.reject(msg, err.Error()))
		return
	}
	origQty := order.Quantity
	fills := s.eng.SubmitOrder(ctx, order)
	s.send(s.executionReport(msg, order.ID, order.Symbol, order.Side, origQty, fills))
}

func (s *session) handleCancel(ctx context.Context, msg *fix.Message) {
	idField, ok := msg.Get(fix.TagOrderID)
	if !ok {
		s.send(s.reject(msg, "missing OrderID"))
		return
	}
	orderID, err := strconv.ParseUint(idField, 10, 64)
	if err != nil {
		s.send(s.reject(msg, "bad OrderID "+strconv.Quote(idField)))
		return
	}

	removed, ok := s.eng.CancelOrder(ctx, orderID)
	report := s.replyTo(msg)
	report.Set(fix.TagMsgType, fix.MsgTypeExecutionReport)
	report.Set(fix.TagOrderID, idField)
	if ok {
		report.Set(fix.TagSymbol, removed.Symbol)
		report.Set(fix.TagSide, fix.WireSide(removed.Side))
		report.Set(fix.TagLeavesQty, "0")
		report.Set(fix.TagText, "CANCELLED")
	} else {
		report.Set(fix.TagText, "NOT FOUND")
	}
	s.send(report)
}

func (s *session) send(msg *fix.Message) {
	s.out <- msg.Encode(fix.FieldDelimiter)
}

// replyTo starts an outbound message addressed back to the sender of in.
func (s *session) replyTo(in *fix.Message) *fix.Message {
	out := fix.NewMessage()
	out.Set(fix.TagBeginString, "FIX.4.2")
	out.Set(fix.TagSenderCompID, "EXCHANGE")
	if sender, ok := in.Get(fix.TagSenderCompID); ok {
		out.Set(fix.TagTargetCompID, sender)
	}
	return out
}

func (s *session) reject(in *fix.Message, reason string) *fix.Message {
	out := s.replyTo(in)
	out.Set(fix.TagMsgType, fix.MsgTypeReject)
	out.Set(fix.TagText, reason)
	return out
}
