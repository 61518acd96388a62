package catalog

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const longDescription = "This is an amazing item that has a long description"

// Controller serves the public item and model routes
type Controller struct {
	ErrorHandler func(router.Context, error) error
}

func NewController(onError func(router.Context, error) error) *Controller {
	if onError == nil {
		onError = func(c router.Context, err error) error {
			return c.JSON(StatusCode(err), map[string]any{"error": err.Error()})
		}
	}
	return &Controller{ErrorHandler: onError}
}

// RegisterRoutes mounts the catalog. Routes with a literal segment under
// /users must be registered by the caller before this runs.
func RegisterRoutes[T any](app router.Router[T], ctrl *Controller) {
	app.Get("/items/user/:item_id", ctrl.ReadNeedyItem)
	app.Get("/items/:item_id", ctrl.ReadItem)
	app.Post("/items", ctrl.CreateItem)
	app.Post("/items/:item_id", ctrl.CreateItemWithID)
	app.Put("/items/:item_id", ctrl.UpdateItem)
	app.Post("/offers", ctrl.CreateOffer)
	app.Get("/users/:user_id", ctrl.ReadUser)
	app.Get("/users/:user_id/items/:item_id", ctrl.ReadUserItem)
	app.Get("/models/:model_name", ctrl.GetModel)
	app.Get("/files/*", ctrl.ReadFile)
	app.Post("/images/multiple", ctrl.CreateImages)
}

// ReadItem handles GET /items/:item_id?needy=&skip=&limit=
func (ctrl *Controller) ReadItem(c router.Context) error {
	needy := c.Query("needy", "")
	skipRaw := c.Query("skip", "0")
	limitRaw := c.Query("limit", "")

	verrs := validation.Errors{}
	if needy == "" {
		verrs["needy"] = validation.ErrRequired
	}

	skip, err := strconv.Atoi(skipRaw)
	if err != nil {
		verrs["skip"] = errNotInteger
	}

	var limit *int
	if limitRaw != "" {
		n, err := strconv.Atoi(limitRaw)
		if err != nil {
			verrs["limit"] = errNotInteger
		} else {
			limit = &n
		}
	}

	if err := verrs.Filter(); err != nil {
		return ctrl.ErrorHandler(c, validationError(err, "invalid query parameters"))
	}

	return c.JSON(fiber.StatusOK, map[string]any{
		"item_id": c.Param("item_id", ""),
		"needy":   needy,
		"skip":    skip,
		"limit":   limit,
	})
}

// ReadNeedyItem handles GET /items/user/:item_id?needy=
func (ctrl *Controller) ReadNeedyItem(c router.Context) error {
	needy := c.Query("needy", "")
	if needy == "" {
		return ctrl.ErrorHandler(c, validationError(validation.Errors{"needy": validation.ErrRequired}, "invalid query parameters"))
	}

	return c.JSON(fiber.StatusOK, map[string]any{
		"item_id": c.Param("item_id", ""),
		"needy":   needy,
	})
}

// CreateItem handles POST /items
func (ctrl *Controller) CreateItem(c router.Context) error {
	item, err := ctrl.bindItem(c)
	if err != nil {
		return ctrl.ErrorHandler(c, err)
	}
	return c.JSON(fiber.StatusOK, NewItemResult(item))
}

// CreateItemWithID handles POST /items/:item_id?q=, echoing the item as sent
func (ctrl *Controller) CreateItemWithID(c router.Context) error {
	id, err := itemID(c)
	if err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	item, err := ctrl.bindItem(c)
	if err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	return c.JSON(fiber.StatusOK, ItemResult{
		ItemID: &id,
		Item:   item.Normalize(),
		Q:      c.Query("q", ""),
	})
}

// UpdateItem handles PUT /items/:item_id
func (ctrl *Controller) UpdateItem(c router.Context) error {
	id, err := itemID(c)
	if err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	var payload ItemUpdate
	if err := c.Bind(&payload); err != nil {
		return ctrl.ErrorHandler(c, parseError(err))
	}

	if err := payload.Validate(); err != nil {
		return ctrl.ErrorHandler(c, validationError(err, "invalid item update"))
	}

	return c.JSON(fiber.StatusOK, ItemUpdateResult{
		ItemID:     id,
		Item:       payload.Item.Normalize(),
		User:       *payload.User,
		Importance: *payload.Importance,
	})
}

// CreateOffer handles POST /offers
func (ctrl *Controller) CreateOffer(c router.Context) error {
	var offer Offer
	if err := c.Bind(&offer); err != nil {
		return ctrl.ErrorHandler(c, parseError(err))
	}

	if err := offer.Validate(); err != nil {
		return ctrl.ErrorHandler(c, validationError(err, "invalid offer"))
	}

	return c.JSON(fiber.StatusOK, offer.Normalize())
}

// ReadUser handles GET /users/:user_id
func (ctrl *Controller) ReadUser(c router.Context) error {
	return c.JSON(fiber.StatusOK, map[string]any{"user_id": c.Param("user_id", "")})
}

// ReadUserItem handles GET /users/:user_id/items/:item_id?q=&short=
func (ctrl *Controller) ReadUserItem(c router.Context) error {
	verrs := validation.Errors{}

	userID, err := strconv.Atoi(c.Param("user_id", ""))
	if err != nil {
		verrs["user_id"] = errNotInteger
	}

	short, err := parseBool(c.Query("short", ""))
	if err != nil {
		verrs["short"] = errNotBool
	}

	if err := verrs.Filter(); err != nil {
		return ctrl.ErrorHandler(c, validationError(err, "invalid request parameters"))
	}

	item := map[string]any{
		"item_id":  c.Param("item_id", ""),
		"owner_id": userID,
	}
	if q := c.Query("q", ""); q != "" {
		item["q"] = q
	}
	if !short {
		item["description"] = longDescription
	}

	return c.JSON(fiber.StatusOK, item)
}

// GetModel handles GET /models/:model_name
func (ctrl *Controller) GetModel(c router.Context) error {
	name := ModelName(c.Param("model_name", ""))
	if err := name.Validate(); err != nil {
		return ctrl.ErrorHandler(c, validationError(validation.Errors{"model_name": err}, "unknown model"))
	}

	return c.JSON(fiber.StatusOK, map[string]any{
		"model_name": name,
		"message":    name.Message(),
	})
}

// ReadFile handles GET /files/*, echoing the remaining path
func (ctrl *Controller) ReadFile(c router.Context) error {
	return c.JSON(fiber.StatusOK, map[string]any{"file_path": c.Param("*", "")})
}

// CreateImages handles POST /images/multiple
func (ctrl *Controller) CreateImages(c router.Context) error {
	var images []Image
	if err := c.Bind(&images); err != nil {
		return ctrl.ErrorHandler(c, parseError(err))
	}

	if err := validation.Validate(images); err != nil {
		return ctrl.ErrorHandler(c, validationError(err, "invalid images"))
	}

	return c.JSON(fiber.StatusOK, images)
}

func (ctrl *Controller) bindItem(c router.Context) (Item, error) {
	var item Item
	if err := c.Bind(&item); err != nil {
		return item, parseError(err)
	}

	if err := item.Validate(); err != nil {
		return item, validationError(err, "invalid item")
	}

	return item, nil
}

func itemID(c router.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("item_id", ""))
	if err != nil {
		return 0, validationError(validation.Errors{"item_id": errNotInteger}, "invalid path parameters")
	}
	return id, nil
}

var (
	errNotInteger = validation.NewError("validation_not_integer", "must be a valid integer")
	errNotBool    = validation.NewError("validation_not_bool", "must be a valid boolean")
)

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "off", "no", "f", "n":
		return false, nil
	case "1", "true", "on", "yes", "t", "y":
		return true, nil
	}
	return false, strconv.ErrSyntax
}

func validationError(err error, message string) *errors.Error {
	return errors.FromOzzoValidation(err, message).
		WithCode(fiber.StatusUnprocessableEntity)
}

func parseError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
		WithCode(errors.CodeBadRequest)
}

// StatusCode maps err to a response status
func StatusCode(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code != 0 {
		return richErr.Code
	}
	return fiber.StatusInternalServerError
}
