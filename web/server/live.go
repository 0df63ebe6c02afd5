package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

const liveWriteTimeout = 10 * time.Second

// LiveMessage is a client request on the live websocket
type LiveMessage struct {
	Type   string           `json:"type"` // "view", "render", "addSphere", "removeSphere"
	View   *scene.ViewState `json:"view,omitempty"`
	Sphere *geometry.Sphere `json:"sphere,omitempty"` // addSphere; nil adds the default sphere
	Index  int              `json:"index,omitempty"`  // removeSphere
}

// LiveFrame describes the PNG frame sent just before it as a binary message
type LiveFrame struct {
	Type          string          `json:"type"` // "frame" or "error"
	Frame         int             `json:"frame,omitempty"`
	ElapsedMs     float64         `json:"elapsedMs,omitempty"`
	FPS           float64         `json:"fps,omitempty"`
	HitPixels     int             `json:"hitPixels,omitempty"`
	ClampedPixels int             `json:"clampedPixels,omitempty"`
	Spheres       int             `json:"spheres,omitempty"`
	View          scene.ViewState `json:"view"`
	Error         string          `json:"error,omitempty"`
}

// liveSession is the per-connection editable scene
type liveSession struct {
	id     string
	conn   *websocket.Conn
	scene  *scene.Scene
	frames int
	logger core.Logger
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(s.config.AllowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range s.config.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// handleLive renders one frame per received message over a websocket
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		http.Error(w, err.Error(), requestStatus(err))
		return
	}
	sceneObj := req.sceneObj

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	sess := &liveSession{
		id:    NewRenderID(),
		conn:  conn,
		scene: sceneObj,
	}
	sess.logger = NewWebLogger(sess.id, nil)
	sess.logger.Printf("Live session opened from %s\n", r.RemoteAddr)

	conn.SetReadLimit(s.config.MaxMessageBytes)
	pongWait := s.config.PingInterval * 2
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Pings use WriteControl, which may run concurrently with frame writes
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(s.config.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	if err := s.sendLiveFrame(sess); err != nil {
		sess.logger.Printf("Live session closed: %v\n", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			sess.logger.Printf("Live session closed: %v\n", err)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := s.applyLiveMessage(sess, data); err != nil {
			if werr := writeLiveJSON(conn, LiveFrame{Type: "error", View: sess.scene.View(), Error: err.Error()}); werr != nil {
				return
			}
			continue
		}

		if err := s.sendLiveFrame(sess); err != nil {
			sess.logger.Printf("Live session closed: %v\n", err)
			return
		}
	}
}

// applyLiveMessage edits a copy of the session scene and keeps it only if it validates
func (s *Server) applyLiveMessage(sess *liveSession, data []byte) error {
	var msg LiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	next := sess.scene.Clone()
	switch msg.Type {
	case "render":
	case "view":
		if msg.View == nil {
			return fmt.Errorf("view message without view")
		}
		next.ApplyView(*msg.View)
	case "addSphere":
		sphere := scene.NewDefaultSphere()
		if msg.Sphere != nil {
			sphere = *msg.Sphere
		}
		next.AddSphere(sphere)
	case "removeSphere":
		if err := next.RemoveSphere(msg.Index); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.checkViewLimits(next.View()); err != nil {
		return err
	}
	if msg.Type == "addSphere" {
		if err := checkSphereLimits(next.Shapes[len(next.Shapes)-1].Sphere); err != nil {
			return err
		}
	}

	sess.scene = next
	return nil
}

// sendLiveFrame renders the session scene and writes the PNG followed by its stats
func (s *Server) sendLiveFrame(sess *liveSession) error {
	width, height := sess.scene.Config.Width, sess.scene.Config.Height
	config := renderer.Config{TileSize: s.config.TileSize, NumWorkers: s.config.NumWorkers}
	frame := renderer.NewRaytracer(renderer.SnapshotOf(sess.scene), width, height, config, nil).RenderPass()
	sess.frames++

	pngData, err := imageToPNG(frame.Image)
	if err != nil {
		return err
	}

	_ = sess.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := sess.conn.WriteMessage(websocket.BinaryMessage, pngData); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return writeLiveJSON(sess.conn, LiveFrame{
		Type:          "frame",
		Frame:         sess.frames,
		ElapsedMs:     float64(frame.Elapsed.Microseconds()) / 1000,
		FPS:           frame.FPS(),
		HitPixels:     frame.Stats.HitPixels,
		ClampedPixels: frame.Stats.ClampedPixels,
		Spheres:       sess.scene.GetPrimitiveCount(),
		View:          sess.scene.View(),
	})
}

func writeLiveJSON(conn *websocket.Conn, v LiveFrame) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode live message: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write live message: %w", err)
	}
	return nil
}
