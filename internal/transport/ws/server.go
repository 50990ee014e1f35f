package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"crashfall.gg/internal/persistence/indexdb"
	"crashfall.gg/internal/persistence/snapshot"
	"crashfall.gg/internal/protocol"
	"crashfall.gg/internal/sim/world"
	"crashfall.gg/internal/sim/world/kernel/model"
)

// Recorder receives every world the server generates, with the time the
// generation took.
type Recorder interface {
	RecordGeneration(w *model.WorldMap, took time.Duration)
}

type Server struct {
	gen  *world.Generator
	rec  Recorder
	idx  *indexdb.SQLiteIndex
	log  *log.Logger
	slot *semaphore.Weighted

	welcome  protocol.WelcomeMsg
	upgrader websocket.Upgrader
}

// NewServer serves generation requests. rec may be nil. maxConcurrent bounds
// generations in flight across all connections; extra requests get E_BUSY.
func NewServer(gen *world.Generator, rec Recorder, logger *log.Logger, maxConcurrent int64, tuningDigest string) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	cats := gen.Catalogs()
	return &Server{
		gen:  gen,
		rec:  rec,
		log:  logger,
		slot: semaphore.NewWeighted(maxConcurrent),
		welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			MapSizes:        gen.MapSizes(),
			Catalogs: protocol.CatalogDigests{
				BiomesDigest:     cats.Biomes.Digest,
				StructuresDigest: cats.Structures.Digest,
				TuningDigest:     tuningDigest,
			},
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// SetIndex attaches the world index. Requests for an indexed (size, seed)
// are then served from its snapshot instead of being regenerated. Call before
// Mux.
func (s *Server) SetIndex(idx *indexdb.SQLiteIndex) { s.idx = idx }

// Mux wires the websocket endpoint, the HTTP world endpoints and /healthz.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", s.Handler())
	mux.HandleFunc("/v1/worlds", s.WorldHandler())
	mux.HandleFunc("/v1/index/worlds", s.IndexHandler())
	mux.HandleFunc("/healthz", s.healthz)
	return mux
}

type healthResp struct {
	Status string              `json:"status"`
	Index  *indexdb.QueueStats `json:"index,omitempty"`
}

func (s *Server) healthz(rw http.ResponseWriter, r *http.Request) {
	resp := healthResp{Status: "ok"}
	if s.idx != nil {
		st := s.idx.Stats()
		resp.Index = &st
	}
	writeHTTPJSON(rw, http.StatusOK, resp)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := writeJSON(conn, s.welcome); err != nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan []byte, 8)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			b, err := json.Marshal(s.handleMessage(msg))
			if err != nil {
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Server) handleMessage(msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewErrorMsg("", protocol.ErrBadRequest, "malformed json")
	}
	if base.Type != protocol.TypeGenerate {
		return protocol.NewErrorMsg(base.RequestID, protocol.ErrBadRequest, "unexpected message type "+strconv.Quote(base.Type))
	}
	if err := protocol.Validate(msg); err != nil {
		return protocol.NewErrorMsg(base.RequestID, protocol.ErrBadRequest, err.Error())
	}
	var req protocol.GenerateMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return protocol.NewErrorMsg(base.RequestID, protocol.ErrBadRequest, err.Error())
	}
	if req.ProtocolVersion != protocol.Version {
		return protocol.NewErrorMsg(req.RequestID, protocol.ErrBadRequest, "bad protocol_version")
	}
	w, _, code, err := s.resolve(context.Background(), model.MapSizeID(req.MapSize), req.Seed)
	if err != nil {
		return protocol.NewErrorMsg(req.RequestID, code, err.Error())
	}
	return protocol.NewWorldMsg(req.RequestID, w, req.IncludeTiles)
}

const (
	sourceSnapshot  = "snapshot"
	sourceGenerated = "generated"
)

// resolve serves an indexed world from its snapshot and generates otherwise.
func (s *Server) resolve(ctx context.Context, size model.MapSizeID, seed *int64) (*model.WorldMap, string, string, error) {
	if seed != nil {
		if w, ok := s.fromSnapshot(ctx, size, *seed); ok {
			return w, sourceSnapshot, "", nil
		}
	}
	w, code, err := s.generate(size, seed)
	return w, sourceGenerated, code, err
}

func (s *Server) fromSnapshot(ctx context.Context, size model.MapSizeID, seed int64) (*model.WorldMap, bool) {
	if s.idx == nil {
		return nil, false
	}
	row, err := s.idx.LookupWorld(ctx, size, seed)
	if err != nil {
		if !errors.Is(err, indexdb.ErrNotFound) {
			s.log.Printf("index lookup size=%s seed=%d: %v", size, seed, err)
		}
		return nil, false
	}
	if row.SnapshotPath == "" {
		return nil, false
	}
	snap, err := snapshot.ReadSnapshot(row.SnapshotPath)
	if err != nil {
		s.log.Printf("snapshot %s: %v", row.SnapshotPath, err)
		return nil, false
	}
	w, err := snapshot.ToWorld(snap)
	if err != nil {
		s.log.Printf("snapshot %s: %v", row.SnapshotPath, err)
		return nil, false
	}
	if w.Digest() != row.Digest {
		s.log.Printf("snapshot %s: digest does not match index row", row.SnapshotPath)
		return nil, false
	}
	return w, true
}

// generate runs one generation under the concurrency limit and maps failures
// to protocol codes.
func (s *Server) generate(size model.MapSizeID, seed *int64) (*model.WorldMap, string, error) {
	if !s.slot.TryAcquire(1) {
		return nil, protocol.ErrBusy, errors.New("generator busy")
	}
	defer s.slot.Release(1)

	var (
		w   *model.WorldMap
		err error
	)
	start := time.Now()
	if seed == nil {
		w, err = s.gen.GenerateRandom(size)
	} else {
		w, err = s.gen.Generate(size, *seed)
	}
	switch {
	case err == nil:
	case errors.Is(err, world.ErrUnknownMapSize):
		return nil, protocol.ErrUnknownMapSize, err
	case errors.Is(err, world.ErrIncompleteGeneration):
		s.log.Printf("generate size=%s: %v", size, err)
		return nil, protocol.ErrIncomplete, err
	default:
		s.log.Printf("generate size=%s: %v", size, err)
		return nil, protocol.ErrInternal, err
	}
	if s.rec != nil {
		s.rec.RecordGeneration(w, time.Since(start))
	}
	return w, "", nil
}

// WorldHandler serves GET /v1/worlds?size=medium&seed=42[&tiles=1].
func (s *Server) WorldHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.Header().Set("Allow", http.MethodGet)
			writeHTTPError(rw, http.StatusMethodNotAllowed, protocol.ErrBadRequest, "method not allowed")
			return
		}
		q := r.URL.Query()
		size := q.Get("size")
		if size == "" {
			writeHTTPError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "missing size")
			return
		}
		var seed *int64
		if raw := q.Get("seed"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeHTTPError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "bad seed")
				return
			}
			seed = &v
		}
		tiles := q.Get("tiles") == "1" || q.Get("tiles") == "true"

		w, source, code, err := s.resolve(r.Context(), model.MapSizeID(size), seed)
		if err != nil {
			writeHTTPError(rw, httpStatus(code), code, err.Error())
			return
		}
		rw.Header().Set("X-World-Source", source)
		writeHTTPJSON(rw, http.StatusOK, protocol.NewWorldMsg("", w, tiles))
	}
}

type indexWorldResp struct {
	World      indexdb.WorldRow       `json:"world"`
	Structures []indexdb.StructureRow `json:"structures"`
}

type indexListResp struct {
	Worlds []indexdb.WorldRow `json:"worlds"`
}

// IndexHandler serves GET /v1/index/worlds[?limit=N] (most recent first) and
// GET /v1/index/worlds?size=small&seed=7 (one row plus its structures).
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.Header().Set("Allow", http.MethodGet)
			writeHTTPError(rw, http.StatusMethodNotAllowed, protocol.ErrBadRequest, "method not allowed")
			return
		}
		if s.idx == nil {
			writeHTTPError(rw, http.StatusNotFound, protocol.ErrNotFound, "world index disabled")
			return
		}
		q := r.URL.Query()
		if size := q.Get("size"); size != "" {
			seed, err := strconv.ParseInt(q.Get("seed"), 10, 64)
			if err != nil {
				writeHTTPError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "bad seed")
				return
			}
			row, err := s.idx.LookupWorld(r.Context(), model.MapSizeID(size), seed)
			if err != nil {
				code := indexErrCode(err)
				writeHTTPError(rw, httpStatus(code), code, err.Error())
				return
			}
			structs, err := s.idx.StructuresOf(r.Context(), model.MapSizeID(size), seed)
			if err != nil {
				writeHTTPError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
				return
			}
			writeHTTPJSON(rw, http.StatusOK, indexWorldResp{World: row, Structures: structs})
			return
		}

		limit := 50
		if raw := q.Get("limit"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v <= 0 {
				writeHTTPError(rw, http.StatusBadRequest, protocol.ErrBadRequest, "bad limit")
				return
			}
			limit = v
		}
		rows, err := s.idx.ListWorlds(r.Context(), limit)
		if err != nil {
			writeHTTPError(rw, http.StatusInternalServerError, protocol.ErrInternal, err.Error())
			return
		}
		if rows == nil {
			rows = []indexdb.WorldRow{}
		}
		writeHTTPJSON(rw, http.StatusOK, indexListResp{Worlds: rows})
	}
}

func indexErrCode(err error) string {
	if errors.Is(err, indexdb.ErrNotFound) {
		return protocol.ErrNotFound
	}
	return protocol.ErrInternal
}

func httpStatus(code string) int {
	switch code {
	case protocol.ErrBadRequest:
		return http.StatusBadRequest
	case protocol.ErrUnknownMapSize, protocol.ErrNotFound:
		return http.StatusNotFound
	case protocol.ErrBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeHTTPError(rw http.ResponseWriter, status int, code, msg string) {
	writeHTTPJSON(rw, status, protocol.NewErrorMsg("", code, msg))
}

func writeHTTPJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
