package streamer

import "sync"

const MIN_BUFFER_SIZE = 1

// BufferSizeFromTotal splits a frame pool between the broadcast queue and a client, so a
// value handed out of a ring of total elements is not rewritten while still queued.
func BufferSizeFromTotal(total int) int {
	if size := total/2 - 1; size > MIN_BUFFER_SIZE {
		return size
	}
	return MIN_BUFFER_SIZE
}

type Client[T any] struct {
	streamer *Streamer[T]
	input    chan<- *T
	C        <-chan *T
}

func (c *Client[T]) Close() {
	for {
		select {
		case _, ok := <-c.C:
			if !ok {
				return
			}
		case c.streamer.remove <- c:
			return
		}
	}
}

// Streamer fans out every broadcast value to all of its clients. A client whose buffer is
// full misses the value.
type Streamer[T any] struct {
	mu        sync.Mutex
	isRunning bool
	clients   map[*Client[T]]bool
	add       chan *Client[T]
	remove    chan *Client[T]
	broadcast chan *T
	stop      chan struct{}
	done      chan struct{}
}

func NewStreamer[T any](buffSize int) *Streamer[T] {
	return &Streamer[T]{
		clients:   make(map[*Client[T]]bool),
		add:       make(chan *Client[T]),
		remove:    make(chan *Client[T]),
		broadcast: make(chan *T, buffSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// NewClient registers a client. On a stopped streamer the client channel is closed right away.
func (m *Streamer[T]) NewClient(buffSize int) *Client[T] {
	ch := make(chan *T, buffSize)
	c := &Client[T]{
		streamer: m,
		input:    ch,
		C:        ch,
	}
	select {
	case m.add <- c:
	case <-m.done:
		close(ch)
	}
	return c
}

func (m *Streamer[T]) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

func (m *Streamer[T]) Broadcast(data *T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isRunning {
		return false
	}
	select {
	case m.broadcast <- data:
		return true
	case <-m.done:
		return false
	}
}

// Run serves the clients until Stop. It can only run once.
func (m *Streamer[T]) Run() {
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		return
	default:
	}
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.mu.Unlock()
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			for client := range m.clients {
				close(client.input)
			}
			clear(m.clients)
			return
		case client := <-m.add:
			m.clients[client] = true
		case client := <-m.remove:
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.input)
			}
		case chunk := <-m.broadcast:
			for client := range m.clients {
				select {
				case client.input <- chunk:
				default:
				}
			}
		}
	}
}

func (m *Streamer[T]) Stop() bool {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return false
	}
	m.isRunning = false
	m.mu.Unlock()
	m.stop <- struct{}{}
	<-m.done
	return true
}
