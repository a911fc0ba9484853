package board

import (
	"log"
	"net/http"

	"gatepass/middleware"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeWS upgrades a dashboard connection and subscribes it to an office
// room. The token travels in the query string since browsers cannot set
// headers on websocket upgrades.
func ServeWS(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := "Bearer " + r.URL.Query().Get("token")
		if _, err := middleware.ValidateJWT(token); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		room := ps.ByName("office")
		if room == "" {
			room = "all"
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{
			Send: make(chan []byte, 64),
			Room: room,
		}
		hub.Register(client)

		// writer pump
		go func() {
			defer conn.Close()
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
		}()

		// reader pump; dashboards only listen, so discard until close
		go func() {
			defer hub.Unregister(client)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}
