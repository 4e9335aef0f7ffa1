package fiber

import (
	"github.com/fwojciec/doclens"
	"github.com/gofiber/fiber/v2"
)

// DefaultMaxPages is the crawl size used when a request does not set one.
const DefaultMaxPages = 50

type crawlRequest struct {
	URL      string `json:"url"`
	MaxPages int    `json:"maxPages"`
}

type crawlResponse struct {
	Success      bool `json:"success"`
	PagesIndexed int  `json:"pagesIndexed"`
}

type statusResponse struct {
	Success        bool   `json:"success"`
	AlreadyCrawled bool   `json:"alreadyCrawled"`
	Message        string `json:"message"`
}

// handleCrawl crawls a site and replaces its indexed content.
func (s *Server) handleCrawl(c *fiber.Ctx) error {
	var req crawlRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, "Invalid request body")
	}
	if req.URL == "" {
		return invalid(c, `Missing "url" in request body`)
	}
	if req.MaxPages <= 0 {
		req.MaxPages = s.maxPages()
	}

	domain := doclens.NormalizeDomain(req.URL)
	if domain == "" {
		return invalid(c, "Invalid url")
	}

	ctx := c.UserContext()
	pages, err := s.Crawler.Crawl(ctx, req.URL, req.MaxPages)
	if err != nil {
		return s.Error(c, err)
	}
	if len(pages) > 0 {
		if _, err := s.Ingester.Ingest(ctx, domain, pages); err != nil {
			return s.Error(c, err)
		}
	}

	return c.JSON(crawlResponse{Success: true, PagesIndexed: len(pages)})
}

// handleCrawlStatus reports whether a domain has a completed crawl.
func (s *Server) handleCrawlStatus(c *fiber.Ctx) error {
	raw := c.Query("domain")
	if raw == "" {
		return invalid(c, "Missing domain parameter")
	}
	domain := doclens.NormalizeDomain(raw)
	if domain == "" {
		return invalid(c, "Invalid domain parameter")
	}

	session, err := s.Ingester.Status(c.UserContext(), domain)
	if err != nil && doclens.ErrorCode(err) != doclens.ENOTFOUND {
		return s.Error(c, err)
	}

	if session != nil && session.Status == doclens.SessionCompleted {
		return c.JSON(statusResponse{Success: true, AlreadyCrawled: true, Message: "Domain already crawled"})
	}
	return c.JSON(statusResponse{Success: true, AlreadyCrawled: false, Message: "Domain not yet crawled"})
}

// handleDeleteDomain removes everything indexed for a domain.
func (s *Server) handleDeleteDomain(c *fiber.Ctx) error {
	domain := doclens.NormalizeDomain(c.Query("domain"))
	if domain == "" {
		return invalid(c, "Missing domain parameter")
	}
	if err := s.Ingester.DeleteDomain(c.UserContext(), domain); err != nil {
		return s.Error(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) maxPages() int {
	if s.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return s.MaxPages
}
