package handlers

import (
	"encoding/json"
	"net/http"

	appMiddleware "github.com/davemk99/studyrag/internal/api/middlewares"
	"github.com/davemk99/studyrag/internal/services"
)

type VideoHandler struct {
	videos *services.VideoService
}

func NewVideoHandler(videos *services.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// GetRecommendations suggests study videos seeded from the user's document
// titles. Optional ?document_id= params narrow the seed set.
func (h *VideoHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	documentIDs := r.URL.Query()["document_id"]

	recs, err := h.videos.Recommend(ctx, userID, documentIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}
