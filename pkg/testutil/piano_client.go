package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// PianoClient is a test client speaking the relay's wire protocol: every
// WebSocket text message is a JSON array of frames, each frame an object
// whose "m" key names the verb.
type PianoClient struct {
	conn   *websocket.Conn
	frames chan map[string]interface{}
	errors chan error
	closed bool
	mutex  sync.RWMutex
}

// DialPiano connects a test client to a relay endpoint. An http:// URL is
// rewritten to ws:// so httptest server URLs can be passed directly.
func DialPiano(serverURL string) (*PianoClient, error) {
	wsURL := strings.Replace(serverURL, "http://", "ws://", 1)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil {
		defer func() {
			_ = resp.Body.Close()
		}()
	}
	if err != nil {
		return nil, err
	}

	client := &PianoClient{
		conn:   conn,
		frames: make(chan map[string]interface{}, 512),
		errors: make(chan error, 1),
	}

	go client.readPump()

	return client, nil
}

// SendBatch writes one WebSocket message carrying the given frames.
func (c *PianoClient) SendBatch(frames ...interface{}) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		return websocket.ErrCloseSent
	}

	payload, err := json.Marshal(frames)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// SendRaw writes an arbitrary text message, valid protocol or not.
func (c *PianoClient) SendRaw(data string) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(data))
}

// NextFrame returns the next received frame, whatever its verb.
func (c *PianoClient) NextFrame(timeout time.Duration) (map[string]interface{}, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case err := <-c.errors:
		return nil, err
	case <-time.After(timeout):
		return nil, context.DeadlineExceeded
	}
}

// WaitForFrame returns the next frame with the given verb, discarding
// everything received before it.
func (c *PianoClient) WaitForFrame(verb string, timeout time.Duration) (map[string]interface{}, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		frame, err := c.NextFrame(remaining)
		if err != nil {
			return nil, err
		}
		if frame["m"] == verb {
			return frame, nil
		}
	}
}

// ExpectNoFrame asserts that no frame with the given verb arrives within the
// window. Frames with other verbs are discarded.
func (c *PianoClient) ExpectNoFrame(verb string, window time.Duration) error {
	deadline := time.Now().Add(window)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		frame, err := c.NextFrame(remaining)
		if err != nil {
			if err == context.DeadlineExceeded {
				return nil
			}
			return nil // connection closed counts as silence
		}
		if frame["m"] == verb {
			return fmt.Errorf("unexpected %q frame: %v", verb, frame)
		}
	}
}

// DrainFrames discards everything currently buffered.
func (c *PianoClient) DrainFrames() {
	for {
		select {
		case <-c.frames:
		default:
			return
		}
	}
}

// CountFrames collects frames for the window and counts those matching verb.
func (c *PianoClient) CountFrames(verb string, window time.Duration) int {
	count := 0
	deadline := time.Now().Add(window)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return count
		}
		frame, err := c.NextFrame(remaining)
		if err != nil {
			return count
		}
		if frame["m"] == verb {
			count++
		}
	}
}

// Closed reports whether the server ended the connection.
func (c *PianoClient) Closed(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		_, err := c.NextFrame(remaining)
		if err == context.DeadlineExceeded {
			return false
		}
		if err != nil {
			return true
		}
	}
}

// Close closes the client connection.
func (c *PianoClient) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.closed {
		c.closed = true
		return c.conn.Close()
	}
	return nil
}

func (c *PianoClient) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case c.errors <- err:
			default:
			}
			return
		}

		var batch []json.RawMessage
		if err := json.Unmarshal(data, &batch); err != nil {
			continue
		}
		for _, raw := range batch {
			var frame map[string]interface{}
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}
			select {
			case c.frames <- frame:
			default:
				// Buffer full, drop frame
			}
		}
	}
}
