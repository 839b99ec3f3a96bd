package rest

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/giftgrove/giftgrove/internal/domain"
	"github.com/giftgrove/giftgrove/internal/present/rest/presenter"
	"github.com/giftgrove/giftgrove/internal/service"
	"github.com/giftgrove/giftgrove/internal/usecase"
	"github.com/giftgrove/giftgrove/permission"
)

// Handler is the thin HTTP caller of the delegation subsystem: it
// loads records, asks the permission package, and only then invokes
// the registry.
type Handler struct {
	repo      usecase.UserRepository
	registry  *usecase.RegistryUsecase
	backfill  *usecase.BackfillUsecase
	directory *service.DirectoryService
}

func NewHandler(
	repo usecase.UserRepository,
	registry *usecase.RegistryUsecase,
	backfill *usecase.BackfillUsecase,
	directory *service.DirectoryService,
) *Handler {
	return &Handler{
		repo:      repo,
		registry:  registry,
		backfill:  backfill,
		directory: directory,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/managed", h.handleManaged)
	e.GET("/api/v1/users/:userId/candidates", h.handleCandidates)
	e.POST("/api/v1/users/:userId/managers", h.handleAddManager)
	e.PUT("/api/v1/users/:userId/managers/:delegateId", h.handleUpdateManagerLevel)
	e.DELETE("/api/v1/users/:userId/managers/:delegateId", h.handleRemoveManager)
	e.POST("/api/v1/users/:userId/convert", h.handleConvert)
}

func actorFromContext(c echo.Context) (domain.User, bool) {
	actor, ok := c.Request().Context().Value(domain.ActorCtxKey).(domain.User)
	return actor, ok
}

type addManagerRequest struct {
	DelegateID string `json:"delegateId"`
	Level      string `json:"level"`
}

type updateLevelRequest struct {
	Level string `json:"level"`
}

type convertRequest struct {
	Managers []struct {
		DelegateID string `json:"delegateId"`
		Level      string `json:"level,omitempty"`
	} `json:"managers"`
}

type managedUserSummary struct {
	ID          string                `json:"id"`
	DisplayName string                `json:"displayName"`
	IsManaged   bool                  `json:"isManaged"`
	Managers    []domain.ManagerEntry `json:"managers"`
}

func (h *Handler) handleManaged(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := actorFromContext(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	managed, err := h.registry.GetManagedUsers(ctx, actor.ID)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	summaries := make([]managedUserSummary, 0, len(managed))
	for _, user := range managed {
		summaries = append(summaries, managedUserSummary{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			IsManaged:   user.IsManaged,
			Managers:    user.Managers,
		})
	}

	return presenter.OK(c, echo.Map{"users": summaries})
}

func (h *Handler) handleCandidates(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := actorFromContext(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	targetID := c.Param("userId")
	target, err := h.repo.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}

	if !permission.CanManageManagers(actor, targetID, target, domain.LevelNone) {
		return presenter.Forbidden(c, "insufficient permissions")
	}

	candidates, err := h.directory.Candidates(ctx, target)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	summaries := make([]managedUserSummary, 0, len(candidates))
	for _, user := range candidates {
		summaries = append(summaries, managedUserSummary{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			IsManaged:   user.IsManaged,
			Managers:    user.Managers,
		})
	}

	return presenter.OK(c, echo.Map{"users": summaries})
}

func (h *Handler) handleAddManager(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := actorFromContext(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	var req addManagerRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	level, err := domain.ParseLevel(req.Level)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	targetID := c.Param("userId")
	target, err := h.repo.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}

	if !permission.CanManageManagers(actor, targetID, target, level) {
		return presenter.Forbidden(c, "insufficient permissions")
	}

	// The delegate must resolve to an existing account.
	if _, err := h.repo.Get(ctx, req.DelegateID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "delegate not found")
		}
		return presenter.InternalError(c, err)
	}

	if _, err := h.registry.AddManager(ctx, targetID, req.DelegateID, level, actor.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateDelegate):
			return presenter.Conflict(c, err)
		case errors.Is(err, domain.ErrConflict):
			return presenter.Conflict(c, err)
		case errors.Is(err, domain.ErrInvalidLevel):
			return presenter.BadRequest(c, err)
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "user not found")
		default:
			return presenter.InternalError(c, err)
		}
	}

	h.directory.Invalidate(targetID)
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleUpdateManagerLevel(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := actorFromContext(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	var req updateLevelRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	level, err := domain.ParseLevel(req.Level)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	targetID := c.Param("userId")
	target, err := h.repo.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}

	if !permission.CanManageManagers(actor, targetID, target, domain.LevelNone) {
		return presenter.Forbidden(c, "insufficient permissions")
	}

	delegateID := c.Param("delegateId")
	if _, err := h.registry.UpdateManagerLevel(ctx, targetID, delegateID, level); err != nil {
		switch {
		case errors.Is(err, domain.ErrNoManagers), errors.Is(err, domain.ErrManagerNotFound):
			return presenter.NotFound(c, "manager not found")
		case errors.Is(err, domain.ErrConflict):
			return presenter.Conflict(c, err)
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "user not found")
		default:
			return presenter.InternalError(c, err)
		}
	}

	h.directory.Invalidate(targetID)
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleRemoveManager(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := actorFromContext(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}

	targetID := c.Param("userId")
	target, err := h.repo.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "user not found")
		}
		return presenter.InternalError(c, err)
	}

	delegateID := c.Param("delegateId")
	if !permission.CanRemoveManager(actor, targetID, target, delegateID) {
		return presenter.Forbidden(c, "insufficient permissions")
	}

	if _, err := h.registry.RemoveManager(ctx, targetID, delegateID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNoManagers):
			return presenter.NotFound(c, "manager not found")
		case errors.Is(err, domain.ErrConflict):
			return presenter.Conflict(c, err)
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "user not found")
		default:
			return presenter.InternalError(c, err)
		}
	}

	h.directory.Invalidate(targetID)
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleConvert(c echo.Context) error {
	ctx := c.Request().Context()

	actor, ok := actorFromContext(c)
	if !ok {
		return presenter.Unauthorized(c, "authentication required")
	}
	if !actor.Admin {
		return presenter.Forbidden(c, "insufficient permissions")
	}

	var req convertRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	targetID := c.Param("userId")
	initial := make([]domain.ManagerEntry, 0, len(req.Managers))
	for _, m := range req.Managers {
		initial = append(initial, domain.ManagerEntry{
			DelegateID: m.DelegateID,
			Level:      domain.Level(m.Level),
		})
	}

	if _, err := h.backfill.ConvertUserToManaged(ctx, targetID, initial, actor.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateDelegate):
			return presenter.Conflict(c, err)
		case errors.Is(err, domain.ErrInvalidLevel):
			return presenter.BadRequest(c, err)
		case errors.Is(err, domain.ErrConflict):
			return presenter.Conflict(c, err)
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "user not found")
		default:
			return presenter.InternalError(c, err)
		}
	}

	h.directory.Invalidate(targetID)
	return presenter.OK(c, echo.Map{"status": "ok"})
}
