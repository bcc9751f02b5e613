package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"disasterwatch/internal/core"
	"disasterwatch/internal/types"
)

// RootMessage is returned by GET on the API prefix.
const RootMessage = "Disaster Management System API"

func RegisterRoot(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		core.JSON(w, r, http.StatusOK, types.RootInfo{Message: RootMessage})
	})
}

func httpStatusOf(err error) int {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
