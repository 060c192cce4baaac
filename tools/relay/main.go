package main

import (
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zaesho/slp-dissect/slp"
)

// Follows a replay file as the game client writes it and broadcasts decoded
// game state to websocket subscribers, e.g. a stream overlay.

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type message struct {
	Type string `json:"type"` // settings / frame / end
	Data any    `json:"data"`
}

type frameUpdate struct {
	Frame   int32          `json:"frame"`
	Players []playerStatus `json:"players"`
}

type playerStatus struct {
	Port    int     `json:"port"`
	Stocks  uint8   `json:"stocks"`
	Percent float32 `json:"percent"`
}

type hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
	last    map[string][]byte // latest message per type, replayed to new clients
}

func newHub() *hub {
	return &hub{
		clients: make(map[string]*websocket.Conn),
		last:    make(map[string][]byte),
	}
}

func (h *hub) add(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	for _, raw := range h.last {
		conn.WriteMessage(websocket.TextMessage, raw)
	}
	return id
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.clients[id]; ok {
		conn.Close()
		delete(h.clients, id)
	}
}

func (h *hub) broadcast(msg message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("relay: marshal failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[msg.Type] = raw
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			log.Debug().Str("client", id).Err(err).Msg("relay: dropping client")
			conn.Close()
			delete(h.clients, id)
		}
	}
}

func main() {
	addr := flag.String("addr", ":8064", "websocket listen address")
	path := flag.String("file", "", "replay file to follow")
	interval := flag.Duration("poll", 500*time.Millisecond, "file poll interval")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *path == "" {
		log.Fatal().Msg("relay: -file is required")
	}

	h := newHub()
	go follow(*path, *interval, h)

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("relay: upgrade failed")
			return
		}
		id := h.add(conn)
		log.Info().Str("client", id).Msg("relay: client connected")
		// Drain the client; its close tears the connection down.
		go func() {
			defer h.remove(id)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	log.Info().Str("addr", *addr).Str("file", *path).Msg("relay: listening")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal().Err(err).Msg("relay: server failed")
	}
}

// follow tails the replay file, decoding whatever new bytes have appeared
// since the last poll. The file is written incrementally by the game client,
// so partial trailing commands are expected and buffered by the stream.
func follow(path string, interval time.Duration, h *hub) {
	parser := slp.NewParser()
	parser.OnSettings = func(settings *slp.GameStart) {
		h.broadcast(message{Type: "settings", Data: settingsPayload(settings)})
	}
	parser.OnFrameFinalized = func(fr *slp.Frame) {
		upd := frameUpdate{Frame: fr.Number}
		for idx := 0; idx < slp.MaxPlayers; idx++ {
			pf := fr.Player(idx, false)
			if pf == nil || pf.Post == nil {
				continue
			}
			upd.Players = append(upd.Players, playerStatus{
				Port:    idx + 1,
				Stocks:  pf.Post.StocksRemaining,
				Percent: pf.Post.Percent,
			})
		}
		h.broadcast(message{Type: "frame", Data: upd})
	}
	parser.OnGameEnd = func(end *slp.GameEnd, placements []slp.Placement) {
		h.broadcast(message{Type: "end", Data: map[string]any{
			"method":     end.Method,
			"placements": placements,
		}})
	}

	stream := slp.NewStream(slp.Tolerant(), slp.OnEvent(parser.HandleEvent))

	var offset int64
	headerSkipped := false
	buf := make([]byte, 32*1024)
	for {
		time.Sleep(interval)
		f, err := os.Open(path)
		if err != nil {
			log.Debug().Err(err).Msg("relay: waiting for replay file")
			continue
		}
		if !headerSkipped {
			head := make([]byte, 1)
			if _, err := f.ReadAt(head, 0); err == nil && head[0] == '{' {
				offset = 15 // past the UBJSON raw element key
			}
			headerSkipped = true
		}
		for {
			n, rerr := f.ReadAt(buf, offset)
			if n > 0 {
				offset += int64(n)
				if _, werr := stream.Write(buf[:n]); werr != nil {
					log.Error().Err(werr).Msg("relay: decode failed")
					f.Close()
					return
				}
			}
			if rerr == io.EOF || rerr != nil {
				break
			}
		}
		f.Close()
	}
}

func settingsPayload(settings *slp.GameStart) map[string]any {
	players := []map[string]any{}
	for _, idx := range settings.ActivePlayers() {
		p := settings.Players[idx]
		players = append(players, map[string]any{
			"port":        p.Port,
			"character":   slp.CharacterName(p.CharacterID),
			"displayName": p.DisplayName,
			"connectCode": p.ConnectCode,
		})
	}
	return map[string]any{
		"stage":   slp.StageName(settings.StageID),
		"stageId": settings.StageID,
		"mode":    settings.RankedMode(),
		"players": players,
	}
}
