package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/threaddesk/threaddesk/internal/api/dto"
	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/service"
)

// AdminHandler exposes the configuration CRUD endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// CreateTeam handles POST /api/v1/teams.
func (h *AdminHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	team := &domain.Team{Name: req.Name, OwnerID: req.OwnerID}
	if err := h.admin.CreateTeam(c.Context(), team); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": team})
}

// ListTeams handles GET /api/v1/teams.
func (h *AdminHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.admin.ListTeams(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teams})
}

// CreateManager handles POST /api/v1/managers.
func (h *AdminHandler) CreateManager(c *fiber.Ctx) error {
	var req dto.ManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	manager := &domain.Manager{
		Name:          req.Name,
		CustomMessage: req.CustomMessage,
		Roles:         req.Roles,
		Users:         req.Users,
	}
	if err := h.admin.CreateManager(c.Context(), manager); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": manager})
}

// ListManagers handles GET /api/v1/managers.
func (h *AdminHandler) ListManagers(c *fiber.Ctx) error {
	managers, err := h.admin.ListManagers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": managers})
}

// CreateForum handles POST /api/v1/forums.
func (h *AdminHandler) CreateForum(c *fiber.Ctx) error {
	var req dto.ForumRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid team_id")
	}
	forum := &domain.Forum{
		TeamID:           teamID,
		Name:             req.Name,
		ChannelID:        req.ChannelID,
		WebhookChannelID: req.WebhookChannelID,
		TraceTag:         req.TraceTag,
	}
	if err := h.admin.CreateForum(c.Context(), forum); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": forum})
}

// ListForums handles GET /api/v1/forums.
func (h *AdminHandler) ListForums(c *fiber.Ctx) error {
	forums, err := h.admin.ListForums(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": forums})
}

// AttachForumManager handles POST /api/v1/forums/:id/managers.
func (h *AdminHandler) AttachForumManager(c *fiber.Ctx) error {
	forumID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid forum id")
	}
	var req dto.AttachManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	managerID, err := uuid.Parse(req.ManagerID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid manager_id")
	}
	if err := h.admin.AttachForumManager(c.Context(), forumID, managerID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddPracticalTag handles POST /api/v1/forums/:id/practical-tags.
func (h *AdminHandler) AddPracticalTag(c *fiber.Ctx) error {
	forumID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid forum id")
	}
	var req dto.PracticalTagRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	tag := &domain.PracticalTag{
		ForumID:      forumID,
		TagID:        req.TagID,
		FromDateTime: req.FromDateTime,
		EndDateTime:  req.EndDateTime,
	}
	if err := h.admin.AddPracticalTag(c.Context(), tag); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": tag})
}

// CreateTraceConfig handles POST /api/v1/trace-configs.
func (h *AdminHandler) CreateTraceConfig(c *fiber.Ctx) error {
	var req dto.TraceConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid team_id")
	}
	config := &domain.TraceConfig{
		TeamID:            teamID,
		GuildID:           req.GuildID,
		Tag:               req.Tag,
		FromDateTime:      req.FromDateTime,
		EndDateTime:       req.EndDateTime,
		CategoryChannelID: req.CategoryChannelID,
		WebhookChannelID:  req.WebhookChannelID,
		RolesAllowed:      req.RolesAllowed,
		UsersAllowed:      req.UsersAllowed,
	}
	if err := h.admin.CreateTraceConfig(c.Context(), config); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": config})
}

// ListTraceConfigs handles GET /api/v1/trace-configs?guild_id=...
func (h *AdminHandler) ListTraceConfigs(c *fiber.Ctx) error {
	guildID, err := strconv.ParseInt(c.Query("guild_id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "guild_id required")
	}
	configs, err := h.admin.ListTraceConfigs(c.Context(), guildID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configs})
}

// AttachTraceConfigManager handles POST /api/v1/trace-configs/:id/managers.
func (h *AdminHandler) AttachTraceConfigManager(c *fiber.Ctx) error {
	configID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid trace config id")
	}
	var req dto.AttachManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	managerID, err := uuid.Parse(req.ManagerID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid manager_id")
	}
	if err := h.admin.AttachTraceConfigManager(c.Context(), configID, managerID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
