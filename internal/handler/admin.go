package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parkwell/parking-backend/internal/model"
	"github.com/parkwell/parking-backend/internal/repository"
)

// LotStore covers the lot lifecycle used by the admin endpoints and the
// public lot listing.
type LotStore interface {
	Create(ctx context.Context, lot *model.Lot) error
	GetByID(ctx context.Context, id uint64) (*model.Lot, error)
	ListWithSpots(ctx context.Context) ([]repository.LotDetail, error)
	UpdateInfo(ctx context.Context, id uint64, name, address, pincode string, pricePerHour float64) error
	DeleteCascade(ctx context.Context, id uint64) error
}

// SpotRemover deletes spots and their history.
type SpotRemover interface {
	DeleteCascade(ctx context.Context, id uint64) error
}

// UserRemover deletes user accounts.
type UserRemover interface {
	Delete(ctx context.Context, id uint64) error
}

// ProfitReporter serves the per-lot profit aggregation.
type ProfitReporter interface {
	ProfitByLot(ctx context.Context) ([]repository.LotProfit, error)
}

// AdminHandler groups the lot, spot and user management endpoints plus
// the profit report. Management routes are protected by JWT auth and the
// Admin role middleware; the lot list and profit report are served to
// the open dashboard endpoints.
type AdminHandler struct {
	Lots     LotStore
	Spots    SpotRemover
	Users    UserRemover
	Billings ProfitReporter
}

func NewAdminHandler(lots LotStore, spots SpotRemover, users UserRemover, billings ProfitReporter) *AdminHandler {
	return &AdminHandler{Lots: lots, Spots: spots, Users: users, Billings: billings}
}

type lotReq struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Pincode      string  `json:"pincode"`
	PricePerHour float64 `json:"price_per_hour"`
	MaxSpots     *int    `json:"max_spots"`
}

// ListLots handles GET /api/lots and returns every lot with its spot
// statuses and occupancy counts.
func (h *AdminHandler) ListLots(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lots, err := h.Lots.ListWithSpots(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, lots)
}

// CreateLot handles POST /api/lots. The lot's spots are created with it,
// numbered 1 through max_spots.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	var req lotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.PricePerHour <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour must be positive"})
	}
	if req.MaxSpots == nil || *req.MaxSpots <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_spots must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	lot := &model.Lot{
		Name:         req.Name,
		Address:      strings.TrimSpace(req.Address),
		Pincode:      strings.TrimSpace(req.Pincode),
		PricePerHour: req.PricePerHour,
		MaxSpots:     *req.MaxSpots,
	}
	if err := h.Lots.Create(ctx, lot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lot failed"})
	}
	return c.JSON(http.StatusCreated, lot)
}

// UpdateLot handles PUT /api/lots/:lot_id. Name, address, pincode and
// price are mutable; max_spots is fixed at creation because spot rows
// and their booking history hang off it.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	lotID, err := strconv.ParseUint(c.Param("lot_id"), 10, 64)
	if err != nil || lotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	var req lotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.PricePerHour <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Lots.GetByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, repository.ErrLotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if req.MaxSpots != nil && *req.MaxSpots != existing.MaxSpots {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrLotResized.Error()})
	}

	if err := h.Lots.UpdateInfo(ctx, lotID, req.Name, strings.TrimSpace(req.Address), strings.TrimSpace(req.Pincode), req.PricePerHour); err != nil {
		if errors.Is(err, repository.ErrLotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lot failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"lot_id": lotID, "updated": true})
}

// DeleteLot handles DELETE /api/lots/:lot_id. The lot's spots, their
// bookings and the attached billings are removed in one transaction.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	lotID, err := strconv.ParseUint(c.Param("lot_id"), 10, 64)
	if err != nil || lotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Lots.DeleteCascade(ctx, lotID); err != nil {
		if errors.Is(err, repository.ErrLotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lot failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"lot_id": lotID, "deleted": true})
}

// DeleteSpot handles DELETE /api/spots/:spot_id.
func (h *AdminHandler) DeleteSpot(c echo.Context) error {
	spotID, err := strconv.ParseUint(c.Param("spot_id"), 10, 64)
	if err != nil || spotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid spot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Spots.DeleteCascade(ctx, spotID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSpotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		case errors.Is(err, repository.ErrSpotOccupied):
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot is occupied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete spot failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"spot_id": spotID, "deleted": true})
}

// DeleteUser handles DELETE /api/users/:user_id. Booking history is
// kept; the bookings' customer reference is nulled out.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "deleted": true})
}

// ProfitSummary handles GET /api/summary/profit-by-lot. Lots with no
// completed billings report zero profit.
func (h *AdminHandler) ProfitSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Billings.ProfitByLot(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rows)
}
