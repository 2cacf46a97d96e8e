package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/davemk99/studyrag/internal/api/handlers"
	appMiddleware "github.com/davemk99/studyrag/internal/api/middlewares"
	"github.com/davemk99/studyrag/internal/config"
	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/core/ingestion_engine"
	"github.com/davemk99/studyrag/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, ing ingestion_engine.Ingestor,
	chat *services.ChatService, quiz *services.QuizService, videos *services.VideoService) *Server {

	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(db, obj, ing, cfg)
	chatHandler := handlers.NewChatHandler(chat)
	quizHandler := handlers.NewQuizHandler(quiz)
	videoHandler := handlers.NewVideoHandler(videos)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Group(func(public chi.Router) {
			public.Use(middleware.Timeout(30 * time.Second))
			public.Post("/signup", authHandler.Signup)
			public.Post("/login", authHandler.Login)
		})

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Get("/documents", docHandler.GetDocuments)
			protected.Get("/documents/{id}", docHandler.GetDocument)
			protected.Delete("/documents/{id}", docHandler.DeleteDocument)
			protected.Post("/documents/{id}/reprocess", docHandler.ReprocessDocument)

			// Chat streams SSE, so no request timeout here; generation has
			// its own deadline.
			protected.Post("/chat/query", chatHandler.QueryDocument)
			protected.Get("/chat/{conversation_id}/messages", chatHandler.GetMessages)

			protected.Post("/quiz/generate", quizHandler.GenerateQuiz)
			protected.Post("/quiz/attempts", quizHandler.SubmitAttempt)
			protected.Get("/quiz/attempts", quizHandler.GetAttempts)

			protected.Get("/videos/recommendations", videoHandler.GetRecommendations)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
