package records

import (
	"errors"

	"record-collection/core/collection"
	"record-collection/core/logger"
	"record-collection/core/transport"
	"record-collection/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the collection.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the collection routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/records")
	group.Get("/", h.HandleList)
	group.Put("/", h.HandleSet)
	group.Post("/", h.HandleCreate)
	group.Post("/sort", h.HandleSort)
	group.Post("/fetch", h.HandleFetch)
	group.Post("/save", h.HandleSave)
	group.Get("/drift", h.HandleDrift)
	group.Get("/:id", h.HandleGet)
	group.Get("/:id/next", h.HandleNext)
	group.Get("/:id/previous", h.HandlePrevious)
	group.Get("/:id/drift", h.HandleDriftOne)
	group.Delete("/:id", h.HandleRemove)
}

// SortRequest is the body of POST /records/sort.
type SortRequest struct {
	Comparator []string `json:"comparator"`
	Direction  []string `json:"direction"`
}

// HandleList returns the records in collection order with the sort settings.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.Summary())
}

// HandleGet returns one record, loading it through the transport if needed.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Record lookup failed", err)
	}
	return c.JSON(rec)
}

// HandleNext returns the record after :id, or 204 for the last record.
func (h *Handler) HandleNext(c *fiber.Ctx) error {
	rec, err := h.service.Next(c.Params("id"))
	return h.adjacent(c, rec, err)
}

// HandlePrevious returns the record before :id, or 204 for the first record.
func (h *Handler) HandlePrevious(c *fiber.Ctx) error {
	rec, err := h.service.Previous(c.Params("id"))
	return h.adjacent(c, rec, err)
}

// queryFlag reads a boolean query flag. Any present value other than "1" or
// "true" turns the flag off.
func queryFlag(c *fiber.Ctx, key string, def bool) bool {
	v := c.Query(key)
	if v == "" {
		return def
	}
	return utils.ToBool(v)
}

func (h *Handler) adjacent(c *fiber.Ctx, rec collection.Attributes, err error) error {
	if err != nil {
		return h.fail(c, "Adjacent record lookup failed", err)
	}
	if rec == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(rec)
}

// HandleSet reconciles the body (an object or an array of objects) into the
// collection. Query flags add, remove and merge default to true and accept
// "1" or "true" when given; at inserts at a position without sorting.
func (h *Handler) HandleSet(c *fiber.Ctx) error {
	items, err := transport.DecodeRecords(c.Body())
	if err != nil {
		return h.fail(c, "Invalid set payload", &collection.InvalidInputError{Input: string(c.Body())})
	}

	out, err := h.service.Set(items, SetFlags{
		Add:    queryFlag(c, "add", true),
		Remove: queryFlag(c, "remove", true),
		Merge:  queryFlag(c, "merge", true),
		At:     c.QueryInt("at", -1),
	})
	if err != nil {
		return h.fail(c, "Set failed", err)
	}
	return c.JSON(fiber.Map{"records": out})
}

// HandleCreate persists one record and adds it to the collection.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	items, err := transport.DecodeRecords(c.Body())
	if err != nil || len(items) != 1 {
		return h.fail(c, "Invalid create payload", &collection.InvalidInputError{Input: string(c.Body())})
	}

	rec, err := h.service.Create(c.UserContext(), items[0])
	if err != nil {
		return h.fail(c, "Create failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// HandleRemove drops one record from the collection.
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	rec, err := h.service.Remove(c.Params("id"))
	if err != nil {
		return h.fail(c, "Remove failed", err)
	}
	return c.JSON(rec)
}

// HandleSort replaces the comparator and direction.
func (h *Handler) HandleSort(c *fiber.Ctx) error {
	var req SortRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, "Invalid sort payload", &collection.InvalidInputError{Input: string(c.Body())})
	}
	if err := h.service.Sort(req.Comparator, req.Direction); err != nil {
		return h.fail(c, "Sort failed", err)
	}
	return c.JSON(h.service.Summary())
}

// HandleFetch reloads the collection; ?reset=true replaces instead of merging.
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	if err := h.service.Fetch(c.UserContext(), queryFlag(c, "reset", false)); err != nil {
		return h.fail(c, "Fetch failed", err)
	}
	return c.JSON(h.service.Summary())
}

// HandleSave persists the collection.
func (h *Handler) HandleSave(c *fiber.Ctx) error {
	if err := h.service.Save(c.UserContext(), queryFlag(c, "reset", false)); err != nil {
		return h.fail(c, "Save failed", err)
	}
	return c.JSON(h.service.Summary())
}

// HandleDrift compares the held records with the transport.
// ?refresh=true bypasses the cached remote index.
func (h *Handler) HandleDrift(c *fiber.Ctx) error {
	report, err := h.service.Drift(c.UserContext(), queryFlag(c, "refresh", false))
	if err != nil {
		return h.fail(c, "Drift check failed", err)
	}
	return c.JSON(report)
}

// HandleDriftOne reports the drift state of one identity.
func (h *Handler) HandleDriftOne(c *fiber.Ctx) error {
	result, err := h.service.DriftOne(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Drift check failed", err)
	}
	return c.JSON(result)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := statusOf(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err), zap.Int("status", status))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusOf(err error) int {
	var verr *collection.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &verr):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, collection.ErrInvalidInput), errors.Is(err, collection.ErrConfiguration):
		return fiber.StatusBadRequest
	case errors.Is(err, collection.ErrFetchInProgress):
		return fiber.StatusConflict
	case errors.Is(err, collection.ErrNoTransport):
		return fiber.StatusNotImplemented
	}
	var serr *transport.StatusError
	if errors.As(err, &serr) {
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
