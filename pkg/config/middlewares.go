package config

import (
	"strconv"

	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware installs the global echo middleware stack.
// extra runs after request logging, inside panic recovery.
func SetupMiddleware(e *echo.Echo, cfg *Config, extra ...echo.MiddlewareFunc) {
	e.Use(logger.EchoMiddleware(*logger.L()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Origins(),
		AllowCredentials: !containsWildcard(cfg.Origins()),
	}))
	e.Use(middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes>>10, 10)+"K"))
	for _, m := range extra {
		e.Use(m)
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
