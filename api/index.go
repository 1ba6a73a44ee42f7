package handler

import (
	"net/http"

	"github.com/arnavshah/housekeeping-api-go/internal/app"
	"github.com/arnavshah/housekeeping-api-go/internal/config"
	"github.com/arnavshah/housekeeping-api-go/internal/logger"
	"github.com/arnavshah/housekeeping-api-go/pkg/handlers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var r http.Handler

func init() {
	// .env is only there under `vercel dev`
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(cfg.Log.Level, cfg.Log.Format, "housekeeping-api")

	gin.SetMode(gin.ReleaseMode)
	h, _, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("could not start", zap.Error(err))
	}
	r = handlers.NewRouter(h)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
