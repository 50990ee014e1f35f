package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"crashfall.gg/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		size  = flag.String("size", "medium", "map size to request")
		seed  = flag.Int64("seed", 0, "first seed (any int64); omit to let the server pick")
		count = flag.Int("count", 1, "worlds to request")
		tiles = flag.Bool("tiles", false, "request tiles in the blueprint")
		every = flag.Duration("every", 0, "delay between requests")
	)
	flag.Parse()
	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	sent, done := 0, 0
	send := func() {
		req := protocol.GenerateMsg{
			Type:            protocol.TypeGenerate,
			ProtocolVersion: protocol.Version,
			RequestID:       fmt.Sprintf("R%d", sent+1),
			MapSize:         *size,
			IncludeTiles:    *tiles,
		}
		if seedSet {
			s := *seed + int64(sent)
			req.Seed = &s
		}
		if err := conn.WriteJSON(req); err != nil {
			logger.Fatalf("send GENERATE: %v", err)
		}
		sent++
	}

	for done < *count {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME sizes=%d biomes=%.12s structures=%.12s", len(w.MapSizes), w.Catalogs.BiomesDigest, w.Catalogs.StructuresDigest)
			send()

		case protocol.TypeWorld:
			var w protocol.WorldMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			done++
			logger.Printf("WORLD %s size=%s seed=%d digest=%.12s structures=%d zombies=%d roads=%d start=(%.0f,%.0f)",
				w.RequestID, w.MapSize, w.Seed, w.Digest, w.Stats.Structures, w.Stats.ZombieAreas, w.Stats.RoadTiles,
				w.Stats.PlayerStart.X, w.Stats.PlayerStart.Y)
			if sent < *count {
				time.Sleep(*every)
				send()
			}

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				continue
			}
			done++
			logger.Printf("ERROR %s code=%s: %s", e.RequestID, e.Code, e.Message)
			if sent < *count {
				time.Sleep(*every)
				send()
			}
		}
	}
}
