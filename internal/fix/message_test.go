package fix

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkova/fix-exchange/internal/domain"
)

func TestParseTagClosedVocabulary(t *testing.T) {
	tag, ok := ParseTag("35")
	require.True(t, ok)
	assert.Equal(t, TagMsgType, tag)
	assert.Equal(t, "MsgType", tag.Name())
	assert.Equal(t, "35", tag.String())

	_, ok = ParseTag("9999")
	assert.False(t, ok)
	_, ok = ParseTag("abc")
	assert.False(t, ok)
}

func TestDecodeLogonMessage(t *testing.T) {
	msg := Decode("8=FIX.4.2|35=A|49=SENDER|56=TARGET|\x01", "|")
	assert.Equal(t, 4, msg.Len())

	begin, _ := msg.Get(TagBeginString)
	assert.Equal(t, "FIX.4.2", begin)
	msgType, _ := msg.Get(TagMsgType)
	assert.Equal(t, "A", msgType)
	sender, _ := msg.Get(TagSenderCompID)
	assert.Equal(t, "SENDER", sender)
	target, _ := msg.Get(TagTargetCompID)
	assert.Equal(t, "TARGET", target)
}

func TestDecodeSkipsUnknownTags(t *testing.T) {
	msg := Decode("8=FIX.4.2|9999=bogus|35=D|", "|")
	assert.Equal(t, 2, msg.Len())
	_, ok := msg.Get(TagMsgType)
	assert.True(t, ok)
}

func TestDecodeSkipsMalformedTokens(t *testing.T) {
	msg := Decode("8=FIX.4.2|35|44=1.5=2|49=S|", "|")
	assert.Equal(t, 2, msg.Len())
	sender, _ := msg.Get(TagSenderCompID)
	assert.Equal(t, "S", sender)
}

func TestEncodeEmitsNumericWireOrder(t *testing.T) {
	msg := NewMessage()
	msg.Set(TagBeginString, "FIX.4.2")
	msg.Set(TagMsgType, "A")
	msg.Set(TagSenderCompID, "SENDER")
	msg.Set(TagTargetCompID, "TARGET")

	encoded := msg.Encode("|")
	ts, ok := msg.Get(TagSendingTime)
	require.True(t, ok)
	// SendingTime (52) sorts between SenderCompID (49) and TargetCompID (56).
	assert.Equal(t, fmt.Sprintf("8=FIX.4.2|35=A|49=SENDER|52=%s|56=TARGET|\x01", ts), encoded)
}

func TestEncodeStampsSendingTimeFormat(t *testing.T) {
	msg := NewMessage()
	msg.Set(TagMsgType, "0")
	msg.Encode("|")
	ts, ok := msg.Get(TagSendingTime)
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}-\d{2}:\d{2}:\d{2}\.\d{3}$`), ts)
}

func TestRoundTripPreservesEverythingButSendingTime(t *testing.T) {
	msg := NewMessage()
	msg.Set(TagBeginString, "FIX.4.2")
	msg.Set(TagMsgType, "D")
	msg.Set(TagSymbol, "AAPL")
	msg.Set(TagSide, "1")
	msg.Set(TagOrderQty, "100")
	msg.Set(TagPrice, "150.25")
	msg.Set(TagSendingTime, "20200101-00:00:00.000")

	decoded := Decode(msg.Encode("|"), "|")
	assert.Equal(t, msg.Len(), decoded.Len())
	for _, tag := range []Tag{TagBeginString, TagMsgType, TagSymbol, TagSide, TagOrderQty, TagPrice} {
		want, _ := msg.Get(tag)
		got, ok := decoded.Get(tag)
		require.True(t, ok, "missing %s", tag.Name())
		assert.Equal(t, want, got)
	}
	// SendingTime was restamped during encode.
	ts, _ := decoded.Get(TagSendingTime)
	assert.NotEqual(t, "20200101-00:00:00.000", ts)
}

func TestRemoveField(t *testing.T) {
	msg := NewMessage()
	msg.Set(TagText, "hello")
	assert.Equal(t, 1, msg.Len())
	msg.Remove(TagText)
	assert.Zero(t, msg.Len())
}

func newOrderMessage() *Message {
	msg := NewMessage()
	msg.Set(TagSymbol, "AAPL")
	msg.Set(TagOrderQty, "100")
	msg.Set(TagPrice, "150.5")
	msg.Set(TagSide, "1")
	return msg
}

func TestToOrder(t *testing.T) {
	seq := domain.NewSequence()
	order, err := newOrderMessage().ToOrder(seq)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), order.ID)
	assert.Equal(t, "AAPL", order.Symbol)
	assert.Equal(t, uint64(100), order.Quantity)
	assert.Equal(t, 150.5, order.Price)
	assert.Equal(t, domain.Buy, order.Side)

	sellMsg := newOrderMessage()
	sellMsg.Set(TagSide, "2")
	sell, err := sellMsg.ToOrder(seq)
	require.NoError(t, err)
	assert.Equal(t, domain.Sell, sell.Side)
}

func TestToOrderRequiresEveryField(t *testing.T) {
	seq := domain.NewSequence()
	for _, tag := range []Tag{TagSymbol, TagOrderQty, TagPrice, TagSide} {
		msg := newOrderMessage()
		msg.Remove(tag)
		_, err := msg.ToOrder(seq)
		assert.ErrorIs(t, err, ErrNoOrder, "expected failure without %s", tag.Name())
	}
}

func TestToOrderRejectsGarbage(t *testing.T) {
	seq := domain.NewSequence()

	cases := map[Tag]string{
		TagOrderQty: "-5",
		TagPrice:    "NaN",
		TagSide:     "3",
	}
	for tag, value := range cases {
		msg := newOrderMessage()
		msg.Set(tag, value)
		_, err := msg.ToOrder(seq)
		assert.ErrorIs(t, err, ErrNoOrder, "expected failure for %s=%s", tag.Name(), value)
	}

	// A failed conversion must not burn an id.
	order, err := newOrderMessage().ToOrder(seq)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), order.ID)
}
