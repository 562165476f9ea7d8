package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/studypod/studypod/internal/ai"
	api "github.com/studypod/studypod/internal/api/http"
	"github.com/studypod/studypod/internal/auth"
	authmw "github.com/studypod/studypod/internal/auth/middleware"
	"github.com/studypod/studypod/internal/config"
	"github.com/studypod/studypod/internal/content"
	"github.com/studypod/studypod/internal/db"
	"github.com/studypod/studypod/internal/quiz"
	"github.com/studypod/studypod/internal/rbac"
	"github.com/studypod/studypod/internal/storage"
	"github.com/studypod/studypod/internal/study"
	syncx "github.com/studypod/studypod/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	events := syncx.NewEventRepo(dbh)
	store := content.NewSQLStore(dbh, cfg.DBDriver, events)

	// --- AI gateway ---
	var gw ai.Gateway
	if cfg.AIConfigured() {
		gw = ai.NewOpenAIGateway(cfg.AIAPIKey, cfg.AIEndpoint, ai.WithModel(cfg.AIModel))
	} else {
		log.Printf("AI_API_KEY not set; generation endpoints will report the missing configuration")
		gw = ai.NewDisabledGateway()
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	svc := study.NewService(store, gw, bs)
	sessions := quiz.NewRegistry(store, gw, quiz.Config{
		QuestionCount: cfg.QuizQuestionCount,
		DurationSec:   cfg.QuizDurationSec,
	})
	defer sessions.CloseAll()

	// --- Auth ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := authmw.NewAuthService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(authSvc, cfg))
	}
	if cfg.EnableGuestAuth {
		r.Post("/auth/guest", auth.GuestLoginHandler(authSvc, dbh, cfg))
	}

	r.Get("/status", api.StatusHandler(cfg))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))

		pr.With(rbac.Require("material:create")).
			Post("/materials", api.CreateMaterialHandler(svc))
		pr.With(rbac.Require("material:view")).
			Get("/materials", api.ListMaterialsHandler(store))
		pr.With(rbac.Require("material:view")).
			Get("/materials/{materialID}", api.GetMaterialHandler(store))
		pr.With(rbac.Require("material:update")).
			Patch("/materials/{materialID}", api.UpdateMaterialHandler(store))
		pr.With(rbac.Require("material:delete")).
			Delete("/materials/{materialID}", api.DeleteMaterialHandler(store))

		pr.With(rbac.Require("material:chat")).
			Post("/materials/{materialID}/chat", api.ChatHandler(svc))
		pr.With(rbac.Require("artifact:generate")).
			Post("/materials/{materialID}/artifacts/{kind}", api.GenerateArtifactHandler(svc))

		pr.With(rbac.Require("quiz:take")).
			Post("/quiz/sessions", api.CreateQuizSessionHandler(sessions))
		pr.With(rbac.Require("quiz:view")).
			Get("/quiz/sessions/{sessionID}", api.GetQuizSessionHandler(sessions))
		pr.With(rbac.Require("quiz:take")).
			Post("/quiz/sessions/{sessionID}/answers", api.AnswerHandler(sessions))
		pr.With(rbac.Require("quiz:take")).
			Post("/quiz/sessions/{sessionID}/submit", api.SubmitQuizHandler(sessions))
		pr.With(rbac.Require("quiz:take")).
			Delete("/quiz/sessions/{sessionID}", api.CloseQuizSessionHandler(sessions))

		pr.With(rbac.Require("quiz:view")).
			Get("/materials/{materialID}/quizzes", api.ListQuizzesHandler(store))
		pr.With(rbac.Require("dashboard:view")).
			Get("/dashboard", api.DashboardHandler(store))
	})

	log.Printf("listening on %s (mode=%s, db=%s, ai=%v)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.AIConfigured())
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
