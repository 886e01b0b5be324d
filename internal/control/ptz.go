package control

import (
	"encoding/json"
	"sync"

	"github.com/ctenhank/viscactl/internal/defs"
)

// ptzRoom is the set of operators watching a camera.
type ptzRoom struct {
	name    string
	control *Control
	hub     *hub

	mutex  sync.Mutex
	closed bool

	// client pumps
	wg sync.WaitGroup
}

func newPTZRoom(name string, control *Control) *ptzRoom {
	r := &ptzRoom{
		name:    name,
		control: control,
		hub:     newHub(),
	}

	go r.hub.run()

	return r
}

// close disconnects all clients and waits for their pumps to return.
func (r *ptzRoom) close() {
	r.mutex.Lock()
	r.closed = true
	r.mutex.Unlock()

	r.hub.close()
	r.wg.Wait()
}

// addPumps reserves the pumps of a new client.
func (r *ptzRoom) addPumps() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return false
	}

	r.wg.Add(2)
	return true
}

func (r *ptzRoom) broadcastResult(res defs.APIPTZResult) {
	byts, _ := json.Marshal(res)
	r.hub.broadcast(byts)
}

type reply struct {
	client  *client
	message []byte
}

// hub maintains the set of active clients and broadcasts messages to the
// clients.
type hub struct {
	clients map[*client]struct{}

	chRegister   chan *client
	chUnregister chan *client
	chBroadcast  chan []byte
	chReply      chan reply
	terminate    chan struct{}

	done chan struct{}
}

func newHub() *hub {
	return &hub{
		clients:      make(map[*client]struct{}),
		chRegister:   make(chan *client),
		chUnregister: make(chan *client),
		chBroadcast:  make(chan []byte),
		chReply:      make(chan reply),
		terminate:    make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (h *hub) run() {
	defer close(h.done)

	for {
		select {
		case cl := <-h.chRegister:
			h.clients[cl] = struct{}{}

		case cl := <-h.chUnregister:
			if _, ok := h.clients[cl]; ok {
				delete(h.clients, cl)
				close(cl.send)
			}

		case message := <-h.chBroadcast:
			for cl := range h.clients {
				h.deliver(cl, message)
			}

		case r := <-h.chReply:
			if _, ok := h.clients[r.client]; ok {
				h.deliver(r.client, r.message)
			}

		case <-h.terminate:
			for cl := range h.clients {
				delete(h.clients, cl)
				close(cl.send)
			}
			return
		}
	}
}

// deliver drops clients that can't keep up.
func (h *hub) deliver(cl *client, message []byte) {
	select {
	case cl.send <- message:
	default:
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *hub) close() {
	close(h.terminate)
	<-h.done
}

func (h *hub) register(cl *client) bool {
	select {
	case h.chRegister <- cl:
		return true
	case <-h.done:
		return false
	}
}

func (h *hub) unregister(cl *client) {
	select {
	case h.chUnregister <- cl:
	case <-h.done:
	}
}

func (h *hub) broadcast(message []byte) {
	select {
	case h.chBroadcast <- message:
	case <-h.done:
	}
}

func (h *hub) reply(cl *client, message []byte) {
	select {
	case h.chReply <- reply{client: cl, message: message}:
	case <-h.done:
	}
}
