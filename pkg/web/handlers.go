package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/activity-tracker/pkg/hub"
)

// handleStatus returns the latest frame status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleRecords returns recent logged records, oldest first.
// ?limit=N returns only the newest N.
func (s *Server) handleRecords(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", MaxRecords)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}

	s.recordsMu.RLock()
	defer s.recordsMu.RUnlock()

	records := s.records
	if limit < len(records) {
		records = records[len(records)-limit:]
	}
	out := make([]RecordView, len(records))
	copy(out, records)
	return c.JSON(out)
}

// handleConfig returns the effective configuration
func (s *Server) handleConfig(c *fiber.Ctx) error {
	if s.config == nil {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(s.config)
}

// handleGetROI returns the live crop region
func (s *Server) handleGetROI(c *fiber.Ctx) error {
	if s.roi == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ROI control not available",
		})
	}
	return c.JSON(s.roi.CurrentROI())
}

// handleSetROI updates the crop region from a JSON body such as
// {"preset": "left"} or {"x": 0.1, "w": 0.8}
func (s *Server) handleSetROI(c *fiber.Ctx) error {
	if s.roi == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ROI control not available",
		})
	}

	roi, err := s.roi.UpdateROI(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.logger.Info("roi updated from dashboard", "roi", roi)
	return c.JSON(roi)
}

// handleStatusWS streams frame results as JSON
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.statusHub, c).Serve()
}

// handleCameraWS streams annotated JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Serve()
}
