package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumenshare/backend/internal/http/response"
	"github.com/lumenshare/backend/internal/repository"
	"github.com/lumenshare/backend/internal/service"
)

type ItemHandler struct {
	svc service.ItemServiceInterface
}

func NewItemHandler(svc service.ItemServiceInterface) *ItemHandler {
	return &ItemHandler{svc: svc}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	item, err := h.svc.Create(userID, service.CreateItemInput{
		Title:       body.Title,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrItemInvalidTitle) || errors.Is(err, service.ErrItemInvalidDescription) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create item", nil)
		return
	}
	response.JSON(w, r, http.StatusCreated, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.svc.ListPaged(pageReq)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list items", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.svc.ListOwnedPaged(userID, pageReq)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list items", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	item, err := h.svc.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "item not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load item", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	item, err := h.svc.Update(userID, id, service.UpdateItemInput{
		Title:       body.Title,
		Description: body.Description,
		ImageURL:    body.ImageURL,
	})
	if err != nil {
		writeItemError(w, r, err, "failed to update item")
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	if err := h.svc.Delete(userID, id); err != nil {
		writeItemError(w, r, err, "failed to delete item")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeItemError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "item not found", nil)
	case errors.Is(err, service.ErrItemForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, service.ErrItemInvalidTitle),
		errors.Is(err, service.ErrItemInvalidDescription),
		errors.Is(err, service.ErrItemNoUpdates):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id64), nil
}

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	req := repository.PageRequest{}
	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, fmt.Errorf("invalid page %q", raw)
		}
		req.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return req, fmt.Errorf("invalid page_size %q", raw)
		}
		req.PageSize = size
	}
	return req, nil
}
