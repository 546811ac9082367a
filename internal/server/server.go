package server

import (
	"ctchen222/solo-tic-tac-toe/internal/api/controller"
	"ctchen222/solo-tic-tac-toe/internal/hub"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub      *hub.Hub
	games    *controller.GameController
	upgrader websocket.Upgrader
	router   *gin.Engine
}

func NewServer(h *hub.Hub, games *controller.GameController) *Server {
	s := &Server{
		hub:   h,
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.router = s.routes()
	return s
}

// Handler returns the traced HTTP handler serving the API and the websocket
// endpoint.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "solo-tic-tac-toe")
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/state", s.games.State)
		api.POST("/move", s.games.Move)
		api.POST("/reset", s.games.Reset)
		api.GET("/history", s.games.History)
	}
	return r
}

// handleWebSocket upgrades the connection and hands it to the hub for the
// lifetime of the connection.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	s.hub.Serve(ctx, conn)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.InfoContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.path", c.FullPath(),
			"http.status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
