// Package hub fans dashboard updates out to websocket clients through a
// single goroutine that owns the client set.
package hub

// Message is one websocket payload. Binary messages carry JPEG frames,
// everything else is JSON text.
type Message struct {
	Data   []byte
	Binary bool
}

// Text wraps pre-encoded JSON.
func Text(data []byte) Message { return Message{Data: data} }

// Frame wraps an encoded image.
func Frame(jpeg []byte) Message { return Message{Data: jpeg, Binary: true} }
