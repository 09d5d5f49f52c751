package handlers

import (
	"net/http"

	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/validator"
)

const (
	MsgContentNotFound = "Content not found"
	MsgContentCreated  = "Content created successfully"
	MsgContentUpdated  = "Content updated successfully"
	MsgContentDeleted  = "Content deleted successfully"
	MsgFavoriteAdded   = "Content added to favorites"
	MsgFavoriteRemoved = "Content removed from favorites"
	msgFetchFailed     = "Failed to fetch content"
	msgFavoritesFailed = "Failed to fetch favorites"
	msgCreateFailed    = "Failed to create content"
	msgUpdateFailed    = "Failed to update content"
	msgDeleteFailed    = "Failed to delete content"
	msgToggleFailed    = "Failed to toggle favorite status"
)

// ListContent returns every feed item, newest first
// @Summary      List content
// @Tags         content
// @Produce      json
// @Success      200  {object}  types.Envelope[[]types.Content]
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /api/content [get]
func (h *APIHandlers) ListContent(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Content.List(r.Context())
	if err != nil {
		h.storeError(r.Context(), w, err, MsgContentNotFound, msgFetchFailed, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(toPublic(docs), ""))
}

// ListFavorites returns the favorite items, most recently created first
// @Summary      List favorites
// @Tags         content
// @Produce      json
// @Success      200  {object}  types.Envelope[[]types.Content]
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /api/favorites [get]
func (h *APIHandlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Content.Favorites(r.Context())
	if err != nil {
		h.storeError(r.Context(), w, err, MsgContentNotFound, msgFavoritesFailed, nil)
		return
	}
	writeJSON(w, http.StatusOK, types.OK(toPublic(docs), ""))
}

// GetContent returns one item
// @Summary      Get content
// @Tags         content
// @Produce      json
// @Param        id   path      string  true  "Content id"
// @Success      200  {object}  types.Envelope[types.Content]
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/content/{id} [get]
func (h *APIHandlers) GetContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := h.Content.FindByID(r.Context(), id)
	if err != nil {
		h.storeError(r.Context(), w, err, MsgContentNotFound, msgFetchFailed, logger.Metadata{"contentId": id})
		return
	}
	writeJSON(w, http.StatusOK, types.OK(doc.ToPublic(), ""))
}

// CreateContent stores a new item
// @Summary      Create content
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request  body      types.ContentCreateData  true  "New item"
// @Success      201      {object}  types.Envelope[types.Content]
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /api/content [post]
func (h *APIHandlers) CreateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data types.ContentCreateData
	if err := decodeJSON(w, r, &data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}
	if err := validator.Struct(data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	doc, err := h.Content.Create(ctx, data)
	if err != nil {
		h.storeError(ctx, w, err, MsgContentNotFound, msgCreateFailed, logger.Metadata{"title": data.Title})
		return
	}
	h.log.Info(ctx, "Content created", logger.ComponentNames.Handler, logger.Metadata{"contentId": doc.ID.Hex()})
	writeJSON(w, http.StatusCreated, types.OK(doc.ToPublic(), MsgContentCreated))
}

// UpdateContent applies a partial update
// @Summary      Update content
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Content id"
// @Param        request  body      types.ContentUpdateData  true  "Changed fields"
// @Success      200      {object}  types.Envelope[types.Content]
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /api/content/{id} [put]
func (h *APIHandlers) UpdateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	var data types.ContentUpdateData
	if err := decodeJSON(w, r, &data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}
	if err := validator.Struct(data); err != nil {
		apperrors.WriteJSON(ctx, h.log, w, err)
		return
	}

	doc, err := h.Content.Update(ctx, id, data)
	if err != nil {
		h.storeError(ctx, w, err, MsgContentNotFound, msgUpdateFailed, logger.Metadata{"contentId": id})
		return
	}
	writeJSON(w, http.StatusOK, types.OK(doc.ToPublic(), MsgContentUpdated))
}

// DeleteContent removes an item
// @Summary      Delete content
// @Tags         content
// @Produce      json
// @Param        id   path      string  true  "Content id"
// @Success      200  {object}  types.Envelope[any]
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/content/{id} [delete]
func (h *APIHandlers) DeleteContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := h.Content.Delete(ctx, id); err != nil {
		h.storeError(ctx, w, err, MsgContentNotFound, msgDeleteFailed, logger.Metadata{"contentId": id})
		return
	}
	h.log.Info(ctx, "Content deleted", logger.ComponentNames.Handler, logger.Metadata{"contentId": id})
	writeJSON(w, http.StatusOK, types.OK[any](nil, MsgContentDeleted))
}

// ToggleFavorite flips the favorite flag of an item
// @Summary      Toggle favorite
// @Tags         content
// @Produce      json
// @Param        id   path      string  true  "Content id"
// @Success      200  {object}  types.Envelope[types.Content]
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/content/{id}/favorite [patch]
func (h *APIHandlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	doc, err := h.Content.ToggleFavorite(ctx, id)
	if err != nil {
		h.storeError(ctx, w, err, MsgContentNotFound, msgToggleFailed, logger.Metadata{"contentId": id})
		return
	}

	message := MsgFavoriteRemoved
	if doc.Favorite {
		message = MsgFavoriteAdded
	}
	h.log.Info(ctx, "Content favorite status toggled", logger.ComponentNames.Handler, logger.Metadata{
		"contentId": id,
		"newStatus": doc.Favorite,
	})
	writeJSON(w, http.StatusOK, types.OK(doc.ToPublic(), message))
}
