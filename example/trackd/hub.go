package main

import "sync"

// frameHub fans encoded JPEG frames out to stream clients.  Publishing
// never blocks: a client that has not consumed its previous frame loses
// the new one, so one stalled viewer cannot back up the pipeline.
type frameHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

func newFrameHub() *frameHub {
	return &frameHub{
		clients: make(map[chan []byte]struct{}),
	}
}

// subscribe registers a stream client and returns its frame channel
func (h *frameHub) subscribe() chan []byte {

	ch := make(chan []byte, 1)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

// unsubscribe removes a stream client; undelivered frames are discarded
func (h *frameHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// count returns the number of connected stream clients
func (h *frameHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// publish offers the frame to every client, replacing an unconsumed
// older frame so viewers always get the newest one
func (h *frameHub) publish(frame []byte) {

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {

		select {
		case ch <- frame:
			continue
		default:
		}

		// drop the stale frame, then retry once
		select {
		case <-ch:
		default:
		}

		select {
		case ch <- frame:
		default:
		}
	}
}
