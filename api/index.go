package handler

import (
	"net/http"
	"rms/config"
	"rms/di"
	"rms/shared/logger"
	"rms/transport/http/response"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app, err := di.InitializeService()
	if err != nil {
		response.WithError(w, err)

		return
	}

	app.HTTP.ServeHTTP(w, r)
}
