package fiber

import (
	"context"

	"github.com/fwojciec/doclens"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects non-websocket requests to websocket routes.
func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// handleAskSocket answers each question received on the connection with
// the same frames the streaming endpoint sends, one JSON message per frame.
func (s *Server) handleAskSocket(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := s.logger()

	for {
		var req askRequest
		if err := conn.ReadJSON(&req); err != nil {
			logger.Debug("websocket closed", "error", err)
			return
		}

		p, err := req.params()
		if err == nil {
			var resp *doclens.SearchResponse
			if resp, err = s.Searcher.Search(ctx, p.query, p.domain, p.searchOptions()); err == nil {
				err = s.Answerer.Stream(ctx, p.query, resp.Results, func(f doclens.Frame) error {
					return conn.WriteJSON(f)
				})
				if err != nil {
					logger.Warn("websocket stream aborted", "error", err)
					return
				}
				continue
			}
		}

		if err := conn.WriteJSON(doclens.Frame{Type: doclens.FrameError, Content: doclens.ErrorMessage(err)}); err != nil {
			return
		}
	}
}
