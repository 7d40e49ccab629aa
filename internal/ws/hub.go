package ws

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages stream subscriptions by workspace ID. The clients map is
// confined to the run goroutine; all access goes through the channels.
type Hub struct {
	clients   map[string]map[Subscriber]struct{}
	register  chan subscription
	unreg     chan subscription
	broadcast chan message
}

// message couples payload with workspace identifier.
type message struct {
	workspaceID string
	payload     []byte
}

// subscription defines register/unregister requests.
type subscription struct {
	workspaceID string
	client      Subscriber
}

// NewHub creates an initialized Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[string]map[Subscriber]struct{}),
		register:  make(chan subscription),
		unreg:     make(chan subscription),
		broadcast: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			if _, ok := h.clients[sub.workspaceID]; !ok {
				h.clients[sub.workspaceID] = make(map[Subscriber]struct{})
			}
			h.clients[sub.workspaceID][sub.client] = struct{}{}
		case sub := <-h.unreg:
			if clients, ok := h.clients[sub.workspaceID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.clients, sub.workspaceID)
				}
			}
		case msg := <-h.broadcast:
			if clients, ok := h.clients[msg.workspaceID]; ok {
				for c := range clients {
					if err := c.Send(msg.payload); err != nil {
						c.Close()
						delete(clients, c)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.workspaceID)
				}
			}
		}
	}
}

// Register adds a client to a workspace stream.
func (h *Hub) Register(workspaceID string, client Subscriber) {
	h.register <- subscription{workspaceID: workspaceID, client: client}
}

// Unregister removes a client.
func (h *Hub) Unregister(workspaceID string, client Subscriber) {
	h.unreg <- subscription{workspaceID: workspaceID, client: client}
}

// Broadcast sends payload to all workspace clients.
func (h *Hub) Broadcast(workspaceID string, payload []byte) {
	h.broadcast <- message{workspaceID: workspaceID, payload: payload}
}
