package server

import (
	"onboarding-service/internal/handler"
	"onboarding-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo              *echo.Echo
	onboardingHandler *handler.OnboardingHandler
}

func NewServer(onboardingService service.OnboardingService, botURL string) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:              e,
		onboardingHandler: handler.NewOnboardingHandler(onboardingService, botURL),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- onboarding --------
	ob := api.Group("/onboarding")
	ob.GET("/resolve", s.onboardingHandler.Resolve)
	ob.GET("/sessions/:sessionID", s.onboardingHandler.GetSession)
	ob.POST("/sessions/:sessionID/slots/:slotID", s.onboardingHandler.RegisterDependent)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
