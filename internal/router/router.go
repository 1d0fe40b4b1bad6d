package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/handlers"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/middleware"
	"github.com/pkaushik-02002/BagavatgitaAI/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	chaptersHandler *handlers.ChaptersHandler,
	versesHandler *handlers.VersesHandler,
	contactHandler *handlers.ContactHandler,
	userHandler *handlers.UserHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/google", authHandler.GoogleLogin)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/sessions", chatHandler.ListSessions)
			r.Post("/sessions", chatHandler.CreateSession)
			r.Delete("/sessions/{id}", chatHandler.DeleteSession)
			r.Get("/sessions/{id}/messages", chatHandler.GetMessages)
			r.Post("/sessions/{id}/messages", chatHandler.SendMessage)
			r.Put("/sessions/{id}/title", chatHandler.UpdateTitle)
			r.Put("/current-session", chatHandler.SetCurrentSession)
			r.Get("/current-session", chatHandler.GetCurrentSession)
			r.Post("/extract", chatHandler.ExtractAttachment)
		})

		// ──── Scripture Routes (public) ────
		r.Get("/chapters", chaptersHandler.List)
		r.Get("/chapters/{number}", chaptersHandler.Get)
		r.Get("/daily-verse", versesHandler.DailyVerse)
		r.Get("/search", versesHandler.Search)

		// ──── Contact ────
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/contact", contactHandler.Submit)
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
		})

		// ──── Admin ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/sync-chapters", chaptersHandler.TriggerSync)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
