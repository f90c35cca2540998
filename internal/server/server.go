package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/gemini-studio-kit/pkg/studio"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes はリクエスト本文の上限です。data URI の画像を含むため大きめに取ります。
const maxBodyBytes = 32 << 20

// Server はセッションを JSON API として公開します。
type Server struct {
	session *studio.Session
}

// New は Server を作成します。
func New(session *studio.Session) (*Server, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	return &Server{session: session}, nil
}

// Routes は chi のルーターを返します。
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
		r.Put("/mode", s.putMode)
		r.Post("/authorize", s.authorize)

		r.Route("/generate", func(r chi.Router) {
			r.Post("/static", s.generateStatic)
			r.Post("/video", s.generateVideo)
			r.Post("/edit", s.generateEdit)
		})

		r.Route("/results", func(r chi.Router) {
			r.Get("/", s.listResults)
			r.Post("/{index}/upscale", s.upscale)
			r.Get("/{index}/download", s.download)
		})
	})
	return r
}

// ListenAndServe は ctx が終了するまで待ち受け、終了時に処理中のリクエストを待ってから停止します。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP サーバーを起動しました", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("HTTP サーバーを停止します")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger はリクエストごとに slog で1行記録します。
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.InfoContext(r.Context(), "request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
