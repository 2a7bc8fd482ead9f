package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
	"github.com/walkguardian/guardian-server-go/internal/geocode"
)

type GeocodeHandler struct {
	client *geocode.Client
}

func NewGeocodeHandler(client *geocode.Client) *GeocodeHandler {
	return &GeocodeHandler{client: client}
}

func (h *GeocodeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/reverse", h.Reverse)
	return r
}

// GET /api/geocode/reverse?lat=&lng=
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("lat", "must be a number"))
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		writeError(w, apperrors.InvalidInput("lng", "must be a number"))
		return
	}
	if err := validateCoordinates(lat, lng); err != nil {
		writeError(w, err)
		return
	}

	raw, err := h.client.Reverse(r.Context(), lat, lng)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
