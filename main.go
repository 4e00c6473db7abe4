package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/quickform/quickform/app"
	"github.com/quickform/quickform/config"
	"github.com/quickform/quickform/database"
	"github.com/quickform/quickform/httpx"
	"github.com/quickform/quickform/log"
	"github.com/quickform/quickform/routes"
	"github.com/quickform/quickform/store"
	"github.com/quickform/quickform/upload"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	app := app.App{
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Store:        store.New(db),
		Uploader:     &upload.Client{BaseURL: cfg.UploadURL},
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
