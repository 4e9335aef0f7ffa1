package main

import (
	"github.com/fwojciec/doclens/fiber"
)

// Run executes the serve command. It blocks until the context is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config.Server

	s := fiber.NewServer(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
	})
	s.Addr = cfg.Addr()
	if c.Addr != "" {
		s.Addr = c.Addr
	}
	s.MaxPages = deps.Config.Crawl.MaxPages
	s.Crawler = deps.Crawler
	s.Ingester = deps.Ingester
	s.Searcher = deps.Searcher
	s.Answerer = deps.Answerer
	s.Metrics = deps.Metrics
	s.Logger = deps.Logger

	if err := s.Open(); err != nil {
		return err
	}
	<-deps.Ctx.Done()
	deps.Logger.Info("shutting down")
	return s.Close()
}
