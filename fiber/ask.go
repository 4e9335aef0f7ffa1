package fiber

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/doclens"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// Ask defaults.
const (
	DefaultAskLimit     = 10
	DefaultAskThreshold = 0.85
)

// Answer strategies.
const (
	StrategyBasic    = "basic"
	StrategyEnhanced = "enhanced"
)

// number accepts a JSON number or a numeric string.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	n.value, n.set = v, true
	return nil
}

func (n number) or(def float64) float64 {
	if !n.set {
		return def
	}
	return n.value
}

type askRequest struct {
	Q         string `json:"q"`
	Domain    string `json:"domain"`
	Limit     number `json:"limit"`
	Threshold number `json:"threshold"`
	Strategy  string `json:"strategy"`
	Stream    *bool  `json:"stream"`
}

// askParams are the validated parameters of a question.
type askParams struct {
	query     string
	domain    string
	limit     int
	threshold float64
	strategy  string
	stream    bool
}

func (r askRequest) params() (askParams, error) {
	if r.Q == "" || r.Domain == "" {
		return askParams{}, doclens.Errorf(doclens.EINVALID, "Missing required parameters: query and domain are required")
	}
	p := askParams{
		query:     r.Q,
		domain:    doclens.NormalizeDomain(r.Domain),
		limit:     int(r.Limit.or(DefaultAskLimit)),
		threshold: r.Threshold.or(DefaultAskThreshold),
		strategy:  r.Strategy,
		stream:    r.Stream == nil || *r.Stream,
	}
	if p.domain == "" {
		return askParams{}, doclens.Errorf(doclens.EINVALID, "Invalid domain")
	}
	if p.limit <= 0 {
		p.limit = DefaultAskLimit
	}
	if p.strategy == "" {
		p.strategy = StrategyEnhanced
	}
	return p, nil
}

func (p askParams) searchOptions() doclens.SearchOptions {
	return doclens.SearchOptions{Limit: p.limit, Threshold: p.threshold, IncludeKeywords: true}
}

// handleAsk answers a question about a crawled domain. Streaming answers
// are sent as server-sent events.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, "Invalid request body")
	}
	p, err := req.params()
	if err != nil {
		return s.Error(c, err)
	}
	ctx := c.UserContext()

	if p.stream {
		resp, err := s.Searcher.Search(ctx, p.query, p.domain, p.searchOptions())
		if err != nil {
			return s.Error(c, err)
		}
		s.streamAnswer(c, p.query, resp.Results)
		return nil
	}

	if p.strategy == StrategyBasic {
		hits, err := s.Ingester.Search(ctx, p.query, p.domain, p.limit*2)
		if err != nil {
			return s.Error(c, err)
		}
		result := make([]*doclens.SearchResult, 0, p.limit)
		for _, h := range hits {
			if len(result) == p.limit {
				break
			}
			if h.Similarity >= p.threshold {
				result = append(result, h)
			}
		}
		return c.JSON(fiber.Map{"success": true, "result": result})
	}

	resp, err := s.Searcher.Search(ctx, p.query, p.domain, p.searchOptions())
	if err != nil {
		return s.Error(c, err)
	}
	answer, err := s.Answerer.Answer(ctx, p.query, resp.Results)
	if err != nil {
		return s.Error(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "result": answer})
}

// streamAnswer sends the answer frames as server-sent events. Generation
// is cancelled as soon as a write to the client fails.
func (s *Server) streamAnswer(c *fiber.Ctx, query string, results []*doclens.SearchResult) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.UserContext()))
	logger := s.logger()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		err := s.Answerer.Stream(ctx, query, results, func(f doclens.Frame) error {
			if err := WriteFrame(w, f); err != nil {
				cancel()
				return err
			}
			return nil
		})
		if err != nil {
			logger.Warn("answer stream aborted", "error", err)
		}
	}))
}

// WriteFrame writes f as one server-sent event and flushes it.
func WriteFrame(w *bufio.Writer, f doclens.Frame) error {
	var buf bytes.Buffer
	buf.WriteString("data: ")
	if err := json.NewEncoder(&buf).Encode(f); err != nil {
		return err
	}
	// Encode terminates with a newline; one more ends the event.
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	return w.Flush()
}
