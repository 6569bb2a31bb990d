package app

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/umyo_receiver/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// deviceCache holds the most recent snapshot payload and the set of
// websocket clients waiting for pushes.
type deviceCache struct {
	mu      sync.RWMutex
	payload []byte
	clients map[*websocket.Conn]struct{}
}

func (c *deviceCache) update(payload []byte) {
	c.mu.Lock()
	c.payload = append(c.payload[:0], payload...)
	conns := make([]*websocket.Conn, 0, len(c.clients))
	for conn := range c.clients {
		conns = append(conns, conn)
	}
	c.mu.Unlock()

	// Push to every connected browser; drop clients that error out.
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.mu.Lock()
			delete(c.clients, conn)
			c.mu.Unlock()
			conn.Close()
		}
	}
}

// RunWeb serves the live device view: a JSON API, a websocket push
// channel and the static files under ./web.
func RunWeb() error {
	cfg := config.Get()

	cache := &deviceCache{clients: make(map[*websocket.Conn]struct{})}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to device snapshots and fan out to browsers
	token := client.Subscribe(cfg.TopicDevices, 0, func(_ mqtt.Client, msg mqtt.Message) {
		cache.update(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicDevices)

	// 3) JSON API endpoint: latest device list
	http.HandleFunc("/api/devices", func(w http.ResponseWriter, r *http.Request) {
		cache.mu.RLock()
		payload := cache.payload
		cache.mu.RUnlock()

		if len(payload) == 0 {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(payload); err != nil {
			log.Printf("web: response write error: %v", err)
		}
	})

	// 4) Websocket endpoint: live pushes on every snapshot
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}

		cache.mu.Lock()
		cache.clients[conn] = struct{}{}
		cache.mu.Unlock()
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Reader loop exists only to notice the close.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						log.Printf("web: websocket error: %v", err)
					}
					cache.mu.Lock()
					delete(cache.clients, conn)
					cache.mu.Unlock()
					conn.Close()
					return
				}
			}
		}()
	})

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
