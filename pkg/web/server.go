// Package web provides a real-time dashboard for the activity tracker
package web

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/activity-tracker/internal/log"
	"github.com/teslashibe/activity-tracker/pkg/activity"
	"github.com/teslashibe/activity-tracker/pkg/hub"
	"github.com/teslashibe/activity-tracker/pkg/pose"
)

// MaxRecords is how many logged records the dashboard keeps in memory
const MaxRecords = 500

// StatusView is the dashboard's view of the latest frame
type StatusView struct {
	RunID        string             `json:"run_id"`
	Frame        int                `json:"frame"`
	Status       activity.Status    `json:"status"`
	IdleState    activity.IdleState `json:"idle_state"`
	IdleFor      float64            `json:"idle_for"` // Seconds
	LastMovement time.Time          `json:"last_movement"`
	Detected     bool               `json:"detected"`
	Frames       int                `json:"frames"`
	Detections   int                `json:"detections"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// RecordView is one logged record as served by /api/records
type RecordView struct {
	Time      string                `json:"time"`
	Frame     int                   `json:"frame"`
	Landmarks map[string]pose.Point `json:"landmarks"`
}

// ROIController exposes the live crop region to the dashboard
type ROIController interface {
	CurrentROI() interface{}
	UpdateROI(body []byte) (interface{}, error)
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	// Latest frame
	state   StatusView
	stateMu sync.RWMutex

	// Ring of the last MaxRecords logged records
	records   []RecordView
	recordsMu sync.RWMutex

	// Effective configuration, served as-is
	config interface{}

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub

	// Optional live ROI control
	roi ROIController
}

// NewServer creates a new dashboard server listening on addr (host:port)
func NewServer(addr string, config interface{}) *Server {
	s := &Server{
		addr:      addr,
		logger:    log.Component("web"),
		records:   make([]RecordView, 0, MaxRecords),
		config:    config,
		statusHub: hub.New("status").RetainLast(),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Activity Tracker Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/records", s.handleRecords)
	api.Get("/config", s.handleConfig)
	api.Get("/roi", s.handleGetROI)
	api.Post("/roi", s.handleSetROI)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// SetROIController enables the /api/roi endpoints
func (s *Server) SetROIController(roi ROIController) {
	s.roi = roi
}

// Start runs the hubs and the HTTP server. It blocks until the server stops.
func (s *Server) Start(ctx context.Context) error {
	fmt.Printf("🌐 Web dashboard: http://%s\n", s.addr)

	go s.statusHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	return s.app.Listen(s.addr)
}

// StartAsync starts the web server in a goroutine and shuts it down when
// ctx is cancelled. Dashboard failures are logged and never stop the caller.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Warn("web server error", "addr", s.addr, "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
}

// OnFrame records a frame result and broadcasts it to status clients.
// It implements activity.Observer.
func (s *Server) OnFrame(res activity.FrameResult) {
	s.stateMu.Lock()
	s.state = StatusView{
		RunID:        res.RunID,
		Frame:        res.Seq,
		Status:       res.Status,
		IdleState:    res.IdleState,
		IdleFor:      res.IdleFor.Seconds(),
		LastMovement: res.LastMovement,
		Detected:     res.Detected,
		Frames:       s.state.Frames + 1,
		Detections:   s.state.Detections,
		UpdatedAt:    res.Time,
	}
	if res.Detected {
		s.state.Detections++
	}
	s.stateMu.Unlock()

	if res.Detected {
		s.addRecord(RecordView{
			Time:      res.Time.Format("15:04:05"),
			Frame:     res.Seq,
			Landmarks: res.Landmarks,
		})
	}

	if err := s.statusHub.BroadcastJSON(res); err != nil {
		s.logger.Warn("status broadcast failed", "frame", res.Seq, "error", err)
	}
}

func (s *Server) addRecord(r RecordView) {
	s.recordsMu.Lock()
	defer s.recordsMu.Unlock()
	s.records = append(s.records, r)
	if len(s.records) > MaxRecords {
		s.records = s.records[1:]
	}
}

// Status returns the latest status view
func (s *Server) Status() StatusView {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// SendCameraFrame sends an annotated JPEG frame to all camera clients
func (s *Server) SendCameraFrame(jpegData []byte) {
	s.cameraHub.BroadcastBinary(jpegData)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
