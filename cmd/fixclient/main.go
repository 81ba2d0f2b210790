// fixclient is a small test client for the FIX gateway: it sends one
// NewOrderSingle or OrderCancelRequest built from flags and prints what the
// venue sends back.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/avolkova/fix-exchange/internal/fix"
)

func main() {
	addr := flag.String("addr", "localhost:9878", "gateway address")
	sender := flag.String("sender", "CLIENT", "SenderCompID")
	symbol := flag.String("symbol", "AAPL", "instrument")
	side := flag.String("side", "1", "1=buy 2=sell")
	quantity := flag.Uint64("qty", 100, "order quantity")
	price := flag.Float64("price", 150.0, "limit price")
	cancelID := flag.Uint64("cancel", 0, "order id to cancel instead of submitting")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	msg := fix.NewMessage()
	msg.Set(fix.TagBeginString, "FIX.4.2")
	msg.Set(fix.TagSenderCompID, *sender)
	msg.Set(fix.TagTargetCompID, "EXCHANGE")
	if *cancelID > 0 {
		msg.Set(fix.TagMsgType, fix.MsgTypeOrderCancelRequest)
		msg.Set(fix.TagOrderID, strconv.FormatUint(*cancelID, 10))
	} else {
		msg.Set(fix.TagMsgType, fix.MsgTypeNewOrderSingle)
		msg.Set(fix.TagSymbol, *symbol)
		msg.Set(fix.TagSide, *side)
		msg.Set(fix.TagOrderQty, strconv.FormatUint(*quantity, 10))
		msg.Set(fix.TagPrice, strconv.FormatFloat(*price, 'f', -1, 64))
	}

	encoded := msg.Encode(fix.FieldDelimiter)
	if _, err := conn.Write([]byte(encoded)); err != nil {
		log.Fatalf("send: %v", err)
	}
	fmt.Printf("sent: %q\n", encoded)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	scanner := bufio.NewScanner(conn)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if i := bytes.IndexByte(data, 0x01); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	if scanner.Scan() {
		fmt.Printf("received: %q\n", scanner.Text())
	}
}
