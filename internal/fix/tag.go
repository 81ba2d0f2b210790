package fix

import "strconv"

// Tag is a FIX field tag. The constant value is the numeric wire tag, so
// sorting tags sorts them into wire order and the vocabulary cannot drift
// from the wire format.
type Tag int

const (
	TagAvgPx        Tag = 6
	TagBeginString  Tag = 8
	TagBodyLength   Tag = 9
	TagCheckSum     Tag = 10
	TagCumQty       Tag = 14
	TagExecID       Tag = 17
	TagMsgSeqNum    Tag = 34
	TagMsgType      Tag = 35
	TagOrderID      Tag = 37
	TagOrderQty     Tag = 38
	TagOrdType      Tag = 40
	TagPrice        Tag = 44
	TagSenderCompID Tag = 49
	TagSendingTime  Tag = 52
	TagSide         Tag = 54
	TagSymbol       Tag = 55
	TagTargetCompID Tag = 56
	TagText         Tag = 58
	TagLeavesQty    Tag = 151
)

var tagNames = map[Tag]string{
	TagAvgPx:        "AvgPx",
	TagBeginString:  "BeginString",
	TagBodyLength:   "BodyLength",
	TagCheckSum:     "CheckSum",
	TagCumQty:       "CumQty",
	TagExecID:       "ExecID",
	TagMsgSeqNum:    "MsgSeqNum",
	TagMsgType:      "MsgType",
	TagOrderID:      "OrderID",
	TagOrderQty:     "OrderQty",
	TagOrdType:      "OrdType",
	TagPrice:        "Price",
	TagSenderCompID: "SenderCompID",
	TagSendingTime:  "SendingTime",
	TagSide:         "Side",
	TagSymbol:       "Symbol",
	TagTargetCompID: "TargetCompID",
	TagText:         "Text",
	TagLeavesQty:    "LeavesQty",
}

// ParseTag maps a wire tag string to a Tag. The vocabulary is closed; tags
// outside it report false.
func ParseTag(s string) (Tag, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	t := Tag(n)
	_, ok := tagNames[t]
	return t, ok
}

// String returns the numeric wire representation, e.g. "35".
func (t Tag) String() string {
	return strconv.Itoa(int(t))
}

// Name returns the symbolic field name, e.g. "MsgType".
func (t Tag) Name() string {
	return tagNames[t]
}
