package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"studynotes/app/agent"
	"studynotes/app/api"
	"studynotes/app/config"
	"studynotes/app/middleware"
	"studynotes/store"
)

type Server struct {
	listenAddr string
	app        *fiber.App
	logger     *slog.Logger
}

func NewServer(cfg *config.Config, s store.DBStorer, analyzer *agent.Analyzer) *Server {
	var (
		app = fiber.New(fiber.Config{
			ErrorHandler: api.ErrorHandler,
			BodyLimit:    cfg.MaxUploadBytes,
			UnescapePath: true,
		})
		checkHandler   = api.NewCheckHandler(analyzer)
		subjectHandler = api.NewSubjectHandler(s)
		indexHandler   = api.NewIndexHandler(s, cfg.IndexUploadDir)
		noteHandler    = api.NewNoteHandler(s, analyzer, cfg.UploadDir)
		fileHandler    = api.NewFileHandler(cfg.UploadDir)
		check          = app.Group("/check")
		apiv1          = app.Group("/api")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)

	app.Post("/upload-index", indexHandler.HandleUploadIndex)
	app.Post("/upload", noteHandler.HandleUpload)

	apiv1.Get("/subjects", subjectHandler.HandleListSubjects)
	apiv1.Post("/subject", subjectHandler.HandleCreateSubject)
	apiv1.Post("/subject/:subject/class", subjectHandler.HandleCreateClass)
	apiv1.Get("/indices/:subject/:class", indexHandler.HandleGetIndex)
	apiv1.Get("/note/:id", noteHandler.HandleGetNote)
	apiv1.Get("/class/:subject/:class", noteHandler.HandleClass)
	apiv1.Get("/index/:subject/:class/:key", noteHandler.HandleIndexNotes)
	apiv1.Get("/final-note/:subject/:class", noteHandler.HandleFinalNote)
	apiv1.Get("/note-counts", noteHandler.HandleNoteCounts)
	apiv1.Get("/note-counts/:subject", noteHandler.HandleNoteCounts)
	apiv1.Get("/note-counts/:subject/:class", noteHandler.HandleNoteCounts)
	apiv1.Get("/file/:filename", middleware.GuardUploads("filename"), fileHandler.HandleGetFile)

	return &Server{
		listenAddr: cfg.ServerAddr,
		app:        app,
		logger:     slog.Default(),
	}
}

// App exposes the fiber app, mostly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Error("error to stop server", "error", err.Error())
		return
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "addr", s.listenAddr)
	if err := s.app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return err
	}
	return nil
}
