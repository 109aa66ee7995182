package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"CoffeeStore-App/internal/application"
	"CoffeeStore-App/internal/domain/model"
)

// CoffeeStoreHandler コーヒーショップに関するHTTPハンドラー
type CoffeeStoreHandler struct {
	placesService application.PlacesService
	storeService  application.CoffeeStoreService
	voteService   application.VoteService
}

// NewCoffeeStoreHandler CoffeeStoreHandlerの新しいインスタンスを作成
func NewCoffeeStoreHandler(placesService application.PlacesService, storeService application.CoffeeStoreService, voteService application.VoteService) *CoffeeStoreHandler {
	return &CoffeeStoreHandler{
		placesService: placesService,
		storeService:  storeService,
		voteService:   voteService,
	}
}

// GetCoffeeStoresByLocation GET /api/getCoffeeStoresByLocation - 周辺のコーヒーショップ一覧
func (h *CoffeeStoreHandler) GetCoffeeStoresByLocation(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(c, "Invalid limit", fmt.Errorf("%w: limit must be a positive integer", model.ErrInvalidArgument))
			return
		}
		limit = n
	}

	stores, err := h.placesService.SearchNearby(c.Request.Context(), c.Query("latLong"), limit)
	if err != nil {
		h.respondError(c, "Oh no! Something went wrong", err)
		return
	}

	c.JSON(http.StatusOK, stores)
}

// GetCoffeeStoreByID GET /api/getCoffeeStoreById - IDでの取得（0件または1件のリスト）
func (h *CoffeeStoreHandler) GetCoffeeStoreByID(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		h.respondError(c, "Id is missing", fmt.Errorf("%w: id parameter is required", model.ErrInvalidArgument))
		return
	}

	stores, err := h.storeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Something went wrong retrieving coffee store", err)
		return
	}

	c.JSON(http.StatusOK, stores)
}

// GetCoffeeStoresByLocationKey GET /api/getCoffeeStoresByLocationKey - 同じエリアの永続化済みストア
func (h *CoffeeStoreHandler) GetCoffeeStoresByLocationKey(c *gin.Context) {
	latLong := c.Query("latLong")
	if strings.TrimSpace(latLong) == "" {
		h.respondError(c, "latLong is missing", fmt.Errorf("%w: latLong parameter is required", model.ErrInvalidArgument))
		return
	}

	stores, err := h.storeService.GetByLocation(c.Request.Context(), latLong)
	if err != nil {
		h.respondError(c, "Something went wrong retrieving coffee stores", err)
		return
	}

	c.JSON(http.StatusOK, stores)
}

// CreateCoffeeStore POST /api/createCoffeeStore - 未登録なら作成、登録済みならそのまま返す
func (h *CoffeeStoreHandler) CreateCoffeeStore(c *gin.Context) {
	var req model.CreateCoffeeStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "Id or name is missing", fmt.Errorf("%w: %v", model.ErrInvalidArgument, err))
		return
	}

	candidate := req.ToCoffeeStore()
	store, err := h.storeService.Upsert(c.Request.Context(), &candidate)
	if err != nil {
		h.respondError(c, "Error creating or finding a store", err)
		return
	}

	c.JSON(http.StatusOK, store)
}

// FavoriteCoffeeStoreByID PUT /api/favoriteCoffeeStoreById - 投票数を1増やす
func (h *CoffeeStoreHandler) FavoriteCoffeeStoreByID(c *gin.Context) {
	var req model.FavoriteCoffeeStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "Id is missing", fmt.Errorf("%w: %v", model.ErrInvalidArgument, err))
		return
	}

	store, err := h.voteService.Upvote(c.Request.Context(), req.ID)
	if err != nil {
		h.respondError(c, "Error upvoting coffee store", err)
		return
	}

	c.JSON(http.StatusOK, []model.CoffeeStore{*store})
}

// respondError リクエスト不備は400、それ以外はすべて500で {message, error} を返す
func (h *CoffeeStoreHandler) respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, model.ErrInvalidArgument) {
		status = http.StatusBadRequest
	} else {
		slog.Error("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString(requestIDKey),
			"error", err,
		)
	}

	c.JSON(status, model.ErrorResponse{
		Message: message + ": " + err.Error(),
		Error:   model.ErrorKind(err),
	})
}
