package fix

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/domain"
)

// Terminator ends every encoded message on the wire.
const Terminator = "\x01"

// FieldDelimiter is the field separator this venue uses between tag=value
// pairs.
const FieldDelimiter = "|"

// Order-entry message types.
const (
	MsgTypeNewOrderSingle     = "D"
	MsgTypeOrderCancelRequest = "F"
	MsgTypeExecutionReport    = "8"
	MsgTypeReject             = "3"
)

// Side values on the wire (tag 54).
const (
	WireSideBuy  = "1"
	WireSideSell = "2"
)

// ErrNoOrder is returned by ToOrder when a required field is missing or does
// not parse; the caller drops the message.
var ErrNoOrder = errors.New("message does not describe an order")

// Message is a flat set of tagged fields.
type Message struct {
	fields map[Tag]string
}

func NewMessage() *Message {
	return &Message{fields: make(map[Tag]string)}
}

func (m *Message) Set(tag Tag, value string) {
	m.fields[tag] = value
}

func (m *Message) Get(tag Tag) (string, bool) {
	v, ok := m.fields[tag]
	return v, ok
}

func (m *Message) Remove(tag Tag) {
	delete(m.fields, tag)
}

func (m *Message) Len() int {
	return len(m.fields)
}

// Decode splits the trimmed text on delim into tag=value tokens. Tokens
// outside the tag vocabulary are skipped with a warning; malformed tokens
// (not exactly one '=') are skipped silently. Decode never fails.
func Decode(text, delim string) *Message {
	fields := make(map[Tag]string)
	trimmed := strings.TrimSuffix(strings.TrimSpace(text), Terminator)
	trimmed = strings.TrimRight(trimmed, delim)
	for _, token := range strings.Split(trimmed, delim) {
		parts := strings.Split(token, "=")
		if len(parts) != 2 {
			continue
		}
		tag, ok := ParseTag(parts[0])
		if !ok {
			zap.L().Warn("skipping unknown FIX tag", zap.String("tag", parts[0]))
			continue
		}
		fields[tag] = parts[1]
	}
	return &Message{fields: fields}
}

// Encode restamps SendingTime and serializes all present fields in numeric
// wire-tag order, each as <tag>=<value> joined by delim, with the frame
// terminator appended.
func (m *Message) Encode(delim string) string {
	m.Set(TagSendingTime, Timestamp())

	tags := make([]Tag, 0, len(m.fields))
	for tag := range m.fields {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	var sb strings.Builder
	for _, tag := range tags {
		sb.WriteString(tag.String())
		sb.WriteByte('=')
		sb.WriteString(m.fields[tag])
		sb.WriteString(delim)
	}
	sb.WriteString(Terminator)
	return sb.String()
}

// Timestamp returns the current UTC time in FIX SendingTime format,
// YYYYMMDD-HH:MM:SS.mmm.
func Timestamp() string {
	return time.Now().UTC().Format("20060102-15:04:05.000")
}

// ToOrder converts the message into a new order, allocating its id from seq.
// Symbol, OrderQty, Price and Side are all required; any missing or
// unparsable field yields ErrNoOrder rather than a partial order.
func (m *Message) ToOrder(seq *domain.Sequence) (*domain.Order, error) {
	symbol, ok := m.Get(TagSymbol)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNoOrder, TagSymbol.Name())
	}
	qtyField, ok := m.Get(TagOrderQty)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNoOrder, TagOrderQty.Name())
	}
	quantity, err := strconv.ParseUint(qtyField, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s %q", ErrNoOrder, TagOrderQty.Name(), qtyField)
	}
	priceField, ok := m.Get(TagPrice)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNoOrder, TagPrice.Name())
	}
	price, err := strconv.ParseFloat(priceField, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s %q", ErrNoOrder, TagPrice.Name(), priceField)
	}
	sideField, ok := m.Get(TagSide)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrNoOrder, TagSide.Name())
	}
	var side domain.Side
	switch sideField {
	case WireSideBuy:
		side = domain.Buy
	case WireSideSell:
		side = domain.Sell
	default:
		return nil, fmt.Errorf("%w: bad %s %q", ErrNoOrder, TagSide.Name(), sideField)
	}

	order, err := domain.NewOrder(seq, symbol, quantity, price, side)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoOrder, err)
	}
	return order, nil
}

// WireSide maps a domain side back to its tag 54 value.
func WireSide(s domain.Side) string {
	if s == domain.Buy {
		return WireSideBuy
	}
	return WireSideSell
}
