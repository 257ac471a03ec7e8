package peer

import "sync"

type fakeCall struct {
	peerID string

	mu        sync.Mutex
	answers   []Stream
	answerErr error
	onStream  func(Stream)
	onClose   func()
	closed    int
}

func newFakeCall(peerID string) *fakeCall { return &fakeCall{peerID: peerID} }

func (c *fakeCall) PeerID() string { return c.peerID }

func (c *fakeCall) Answer(local Stream) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, local)
	return c.answerErr
}

func (c *fakeCall) OnStream(fn func(Stream)) {
	c.mu.Lock()
	c.onStream = fn
	c.mu.Unlock()
}

func (c *fakeCall) OnClose(fn func()) {
	c.mu.Lock()
	c.onClose = fn
	c.mu.Unlock()
}

// Close fires the close callback once, like a real call.
func (c *fakeCall) Close() {
	c.mu.Lock()
	c.closed++
	first := c.closed == 1
	fn := c.onClose
	c.mu.Unlock()
	if first && fn != nil {
		fn()
	}
}

func (c *fakeCall) emit(st Stream) {
	c.mu.Lock()
	fn := c.onStream
	c.mu.Unlock()
	fn(st)
}

func (c *fakeCall) answered() []Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Stream(nil), c.answers...)
}

func (c *fakeCall) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeChannel struct {
	peerID string

	mu      sync.Mutex
	sent    [][]byte
	onData  func([]byte)
	onClose func()
	closed  int
}

func newFakeChannel(peerID string) *fakeChannel { return &fakeChannel{peerID: peerID} }

func (c *fakeChannel) PeerID() string { return c.peerID }
func (c *fakeChannel) Label() string  { return "control" }

func (c *fakeChannel) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, data)
	return nil
}

func (c *fakeChannel) OnData(fn func([]byte)) {
	c.mu.Lock()
	c.onData = fn
	c.mu.Unlock()
}

func (c *fakeChannel) OnClose(fn func()) {
	c.mu.Lock()
	c.onClose = fn
	c.mu.Unlock()
}

func (c *fakeChannel) Close() {
	c.mu.Lock()
	c.closed++
	first := c.closed == 1
	fn := c.onClose
	c.mu.Unlock()
	if first && fn != nil {
		fn()
	}
}

func (c *fakeChannel) deliver(b []byte) {
	c.mu.Lock()
	fn := c.onData
	c.mu.Unlock()
	fn(b)
}

func (c *fakeChannel) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
