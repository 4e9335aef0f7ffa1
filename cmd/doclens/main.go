package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/doclens"
	"github.com/fwojciec/doclens/answer"
	"github.com/fwojciec/doclens/crawl"
	"github.com/fwojciec/doclens/gemini"
	"github.com/fwojciec/doclens/goquery"
	"github.com/fwojciec/doclens/htmltomarkdown"
	dochttp "github.com/fwojciec/doclens/http"
	"github.com/fwojciec/doclens/ingest"
	"github.com/fwojciec/doclens/openai"
	"github.com/fwojciec/doclens/prometheus"
	"github.com/fwojciec/doclens/readability"
	"github.com/fwojciec/doclens/redis"
	"github.com/fwojciec/doclens/rod"
	"github.com/fwojciec/doclens/search"
	dslog "github.com/fwojciec/doclens/slog"
	"github.com/fwojciec/doclens/sqlite"
	"github.com/fwojciec/doclens/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = m.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config, when set before Run, is used instead of loading one.
	Config *Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases everything opened by Run, most recent first.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("doclens"),
		kong.Description("Crawl documentation sites and answer questions about them."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'doclens --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	if m.Config == nil {
		if m.Config, err = LoadConfig(cli.Config); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	deps.Config = m.Config
	deps.Logger = dslog.NewLogger(stderr, m.Config.Log.Level, m.Config.Log.Format)

	if err := m.wire(ctx, cmd, deps); err != nil {
		return err
	}
	return kongCtx.Run(deps)
}

// wire builds the services the command needs into deps.
func (m *Main) wire(ctx context.Context, cmd string, deps *Dependencies) error {
	cfg, logger := m.Config, deps.Logger

	if cfg.DB.Path != ":memory:" {
		_ = os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755)
	}
	var opts []sqlite.Option
	if cfg.DB.Dimensions > 0 {
		opts = append(opts, sqlite.WithDimensions(cfg.DB.Dimensions))
	}
	m.DB = sqlite.NewDB(cfg.DB.Path, opts...)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set DOCLENS_DB_PATH to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DB.Path, err)
	}
	m.closers = append(m.closers, m.DB)

	chunks := sqlite.NewChunkService(m.DB)
	sessions := sqlite.NewSessionService(m.DB)

	var metrics *prometheus.Metrics
	if cmd == "serve" {
		metrics = prometheus.NewMetrics()
		deps.Metrics = metrics.Handler()
	}

	// Status and delete never embed or generate, so they run without
	// provider credentials.
	if cmd == "status" || cmd == "delete" {
		deps.Ingester = ingest.NewCoordinator(chunks, sessions, nil, logger)
		return nil
	}

	embedder, generator, tokens, err := m.provider(ctx, deps)
	if err != nil {
		return err
	}

	coordinator := ingest.NewCoordinator(chunks, sessions, embedder, logger)
	engine := search.NewEngine(chunks, embedder, logger)
	answers := answer.NewService(generator, logger)
	answers.Tokens = tokens

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Set DOCLENS_REDIS_ENABLED=false to run without a cache")
			return err
		}
		m.closers = append(m.closers, client)
		answers.Cache = redis.NewAnswerCache(client, cfg.Redis.TTL)
		cached := redis.NewEmbedder(embedder, client, embeddingModel(cfg.Provider), cfg.Redis.TTL, logger)
		engine.Embedder = cached
	}

	deps.Ingester = coordinator
	deps.Searcher = dslog.NewLoggingSearcher(engine, logger)
	deps.Answerer = answers
	if metrics != nil {
		deps.Ingester = prometheus.NewIngester(deps.Ingester, metrics)
		deps.Searcher = prometheus.NewSearcher(deps.Searcher, metrics)
		deps.Answerer = prometheus.NewAnswerer(deps.Answerer, metrics)
	}

	if cmd == "crawl" || cmd == "serve" {
		crawler, err := m.crawler(deps)
		if err != nil {
			return err
		}
		deps.Crawler = crawler
	}
	return nil
}

// provider builds the embedding and generation clients of the configured
// provider. The token counter is optional and nil for providers without a
// local tokenizer.
func (m *Main) provider(ctx context.Context, deps *Dependencies) (doclens.Embedder, doclens.Generator, doclens.TokenCounter, error) {
	cfg, logger := m.Config.Provider, deps.Logger

	var (
		embedder  doclens.Embedder
		generator doclens.Generator
		tokens    doclens.TokenCounter
	)
	switch cfg.Name {
	case ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey, cfg.BaseURL)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Set GEMINI_API_KEY. Get a key at https://aistudio.google.com/apikey")
			return nil, nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		embedder = gemini.NewEmbedder(client, cfg.EmbeddingModel, cfg.Dimensions)
		generator = gemini.NewGenerator(client, cfg.Model)
		if tc, err := gemini.NewTokenCounter(cfg.Model); err != nil {
			logger.Warn("token counting disabled", "model", cfg.Model, "error", err)
		} else {
			tokens = tc
		}
	case ProviderOpenAI:
		client, err := openai.NewClient(cfg.APIKey, cfg.BaseURL)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Set OPENAI_API_KEY")
			return nil, nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		embedder = openai.NewEmbedder(client, cfg.EmbeddingModel)
		generator = openai.NewGenerator(client, cfg.Model)
	default:
		return nil, nil, nil, doclens.Errorf(doclens.EINVALID, "unknown provider %q", cfg.Name)
	}

	return dslog.NewLoggingEmbedder(embedder, logger), dslog.NewLoggingGenerator(generator, logger), tokens, nil
}

// crawler builds the crawler from the crawl settings.
func (m *Main) crawler(deps *Dependencies) (*crawl.Crawler, error) {
	cfg, logger := m.Config.Crawl, deps.Logger

	var driver doclens.PageDriver
	if cfg.Browser {
		manager, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or set DOCLENS_CRAWL_BROWSER=false")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		d := rod.NewDriver(manager)
		d.NavigationTimeout = cfg.NavigationTimeout
		d.IdleTimeout = cfg.IdleTimeout
		d.ContentTimeout = cfg.ContentTimeout
		driver = d
	} else {
		driver = dochttp.NewDriver(dochttp.WithTimeout(cfg.FetchTimeout))
	}
	logged := dslog.NewLoggingDriver(driver, logger)
	m.closers = append(m.closers, logged)

	var extractor doclens.PageExtractor
	switch cfg.Extractor {
	case ExtractorHeuristic, "":
		extractor = goquery.NewExtractor()
	case ExtractorTrafilatura:
		extractor = goquery.NewReaderExtractor(trafilatura.NewExtractor(), htmltomarkdown.NewConverter())
	case ExtractorReadability:
		extractor = goquery.NewReaderExtractor(readability.NewExtractor(), htmltomarkdown.NewConverter())
	default:
		return nil, doclens.Errorf(doclens.EINVALID, "unknown extractor %q", cfg.Extractor)
	}

	c := &crawl.Crawler{
		Driver:      logged,
		Extractor:   extractor,
		RateLimiter: crawl.NewDomainLimiter(cfg.RPS),
		Logger:      logger,
		Concurrency: cfg.Concurrency,
	}
	if cfg.Sitemaps {
		c.Sitemaps = dslog.NewLoggingSitemapService(dochttp.NewSitemapService(nil), logger)
	}
	return c, nil
}

// embeddingModel names the model query embeddings are cached under.
func embeddingModel(cfg ProviderConfig) string {
	if cfg.EmbeddingModel != "" {
		return cfg.EmbeddingModel
	}
	if cfg.Name == ProviderOpenAI {
		return openai.DefaultEmbeddingModel
	}
	return gemini.DefaultEmbeddingModel
}
