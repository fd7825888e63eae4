package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"studyrag/app/agent"
	"studyrag/app/api"
	"studyrag/app/middleware"
	"studyrag/config"
	"studyrag/loader"
	"studyrag/logger"
	"studyrag/model"
	"studyrag/retrieval"
	"studyrag/store"
)

// Components are the services behind the HTTP handlers.
type Components struct {
	Store      store.DBStorer
	Embeddings *model.Provider
	Ingest     *loader.Service
	Builder    *retrieval.Builder
	Agent      *agent.Agent
	Videos     *agent.Videos
}

// Wire builds every component from cfg on top of st. Missing API keys leave
// the matching component unconfigured rather than failing.
func Wire(ctx context.Context, cfg config.Config, log *logger.Logger, st store.DBStorer) Components {
	provider := model.NewProviderFromConfig(cfg, log)

	var completer agent.Completer
	if cfg.LLM.APIKey != "" {
		llm, err := agent.NewOpenAICompatible(cfg.LLM)
		if err != nil {
			log.Error("LLM client unavailable", "error", err)
		} else {
			completer = agent.NewLLMCompleter(log, llm, cfg.ExternalTimeout)
		}
	} else {
		log.Warn("no LLM API key, chat and quiz generation disabled")
	}

	var searcher agent.VideoSearcher
	if cfg.YouTubeAPIKey != "" {
		yt, err := agent.NewYouTubeSearcher(ctx, cfg.YouTubeAPIKey, cfg.ExternalTimeout)
		if err != nil {
			log.Error("YouTube client unavailable", "error", err)
		} else {
			searcher = yt
		}
	}

	return Components{
		Store:      st,
		Embeddings: provider,
		Ingest:     loader.NewService(log, st, loader.NewPDFExtractor(), provider, cfg.ChunkSize, cfg.ChunkOverlap),
		Builder:    retrieval.NewBuilder(log, provider, retrieval.DefaultTopK),
		Agent:      agent.New(log, completer, cfg.LLM.Model, cfg.LLM.QuizModel),
		Videos:     agent.NewVideos(log, searcher),
	}
}

// NewApp builds the fiber application with every route registered.
func NewApp(cfg config.Config, log *logger.Logger, comp Components) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: api.NewErrorHandler(log),
		BodyLimit:    (cfg.MaxUploadMB + 1) << 20,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(middleware.RequestLog(log, "/check"))

	var (
		checkHandler    = api.NewCheckHandler(comp.Store, comp.Embeddings.Configured, comp.Videos.Configured)
		documentHandler = api.NewDocumentHandler(log, comp.Store, comp.Ingest, cfg.UploadDir, cfg.MaxUploadMB)
		quizHandler     = api.NewQuizHandler(log, comp.Store, comp.Store, comp.Agent)
		chatHandler     = api.NewChatHandler(log, comp.Store, comp.Store, comp.Builder, comp.Agent)
		videoHandler    = api.NewVideoHandler(comp.Store, comp.Videos)

		check  = app.Group("/check")
		apiv1  = app.Group("/api")
		pdfs   = apiv1.Group("/pdfs")
		quiz   = apiv1.Group("/quiz")
		chats  = apiv1.Group("/chats")
		videos = apiv1.Group("/youtube")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Get("/health", checkHandler.HandleHealth)

	pdfs.Post("/upload", documentHandler.HandleUpload)
	pdfs.Get("/", documentHandler.HandleList)
	pdfs.Get("/:id", documentHandler.HandleGet)
	pdfs.Get("/:id/file", documentHandler.HandleFile)
	pdfs.Post("/:id/reindex", documentHandler.HandleReindex)
	pdfs.Delete("/:id", documentHandler.HandleDelete)

	quiz.Post("/generate", quizHandler.HandleGenerate)
	quiz.Post("/submit", quizHandler.HandleSubmit)
	quiz.Get("/attempts", quizHandler.HandleAttempts)
	quiz.Get("/progress", quizHandler.HandleProgress)
	quiz.Get("/quizzes", quizHandler.HandleList)
	quiz.Get("/quizzes/:id", quizHandler.HandleGet)

	chats.Post("/", chatHandler.HandleCreate)
	chats.Get("/", chatHandler.HandleList)
	chats.Get("/:id", chatHandler.HandleGet)
	chats.Delete("/:id", chatHandler.HandleDelete)
	chats.Post("/:chatId/message", chatHandler.HandleMessage)

	videos.Get("/:pdfId", videoHandler.HandleRecommend)

	return app
}

type Server struct {
	cfg   config.Config
	log   *logger.Logger
	app   *fiber.App
	store store.DBStorer
}

func NewServer(cfg config.Config, log *logger.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Run opens the store and serves until the listener stops.
func (s *Server) Run(ctx context.Context) error {
	st, err := store.Open(ctx, s.cfg)
	if err != nil {
		return err
	}
	s.store = st
	s.log.Info("store ready", "driver", s.cfg.StoreDriver)

	s.app = NewApp(s.cfg, s.log, Wire(ctx, s.cfg, s.log, st))
	s.log.Info("server listening", "addr", s.cfg.ServerAddr)
	return s.app.Listen(s.cfg.ServerAddr)
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.log.Error("error shutting down server", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Error("error closing store", "error", err)
		}
	}
	s.log.Info("server stopped")
}
