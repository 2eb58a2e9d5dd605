// Package ws transmite atualizações de partida (placar, status, odds)
// para clientes WebSocket inscritos por partida.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/sportsbook-engine/pkg/contracts/events"
)

// ClientMsg é a mensagem de controle enviada pelo cliente.
type ClientMsg struct {
	Type    string `json:"type"` // subscribe | unsubscribe | ping
	MatchID string `json:"matchId,omitempty"`
}

// client embrulha a conexão com um mutex de escrita. O gorilla permite
// um único escritor concorrente por conexão; o loop de leitura (pong) e
// o Broadcast escrevem pelo mesmo caminho serializado.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub gerencia conexões WebSocket e assinaturas por partida.
// subs mapeia matchID para o conjunto de conexões inscritas; a chave
// vazia "*" recebe todas as partidas.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
}

// NewHub cria o hub com política customizada de origem (CORS).
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão.
// Subscribe sem matchId inscreve no feed completo.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}
	pong, _ := json.Marshal(map[string]string{"type": "pong"})

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		key := msg.MatchID
		if key == "" {
			key = "*"
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[key]; !ok {
				h.subs[key] = make(map[*client]struct{})
			}
			h.subs[key][cl] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[key]; ok {
				delete(m, cl)
				if len(m) == 0 {
					delete(h.subs, key)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = cl.write(pong)
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar.
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, cl)
	}
	h.mu.Unlock()
}

// Broadcast envia a atualização para os inscritos na partida e para os
// inscritos no feed completo.
func (h *Hub) Broadcast(update events.MatchUpdate) {
	h.mu.RLock()
	clients := make([]*client, 0, 4)
	for c := range h.subs[update.MatchID] {
		clients = append(clients, c)
	}
	for c := range h.subs["*"] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range clients {
		_ = c.write(b)
	}
}
