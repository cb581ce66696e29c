package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"khedutbazaar/database"
	"khedutbazaar/models"
	"khedutbazaar/notification"
	"khedutbazaar/translation"

	"github.com/gofiber/fiber/v2"
)

// MobileController serves the /API endpoints used by the mobile app.
type MobileController struct {
	store      *database.Store
	translator *translation.Translator
	dispatcher *notification.Dispatcher
	now        func() time.Time
}

func NewMobileController(store *database.Store, translator *translation.Translator, dispatcher *notification.Dispatcher) *MobileController {
	return &MobileController{store: store, translator: translator, dispatcher: dispatcher, now: time.Now}
}

func locationMarketName(l *models.MarketLocation) *string   { return &l.MarketName }
func locationDistrictName(l *models.MarketLocation) *string { return &l.DistrictName }
func locationStateName(l *models.MarketLocation) *string    { return &l.StateName }

func (h *MobileController) translateLocations(c *fiber.Ctx, rows []models.MarketLocation, lang string) []models.MarketLocation {
	return translation.BatchTranslate(c.UserContext(), h.translator, rows, lang,
		locationMarketName, locationDistrictName, locationStateName)
}

type loginRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	Token    string `json:"token"`
}

// Login registers an app install and returns its user id. Calling it again
// for the same device refreshes the push token.
func (h *MobileController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "device_id is required")
	}

	userID, existed, err := h.store.RegisterDevice(c.UserContext(), deviceID, strings.TrimSpace(req.Token))
	if err != nil {
		log.Println("❌ Error registering device:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to register device")
	}

	message := "New device registered"
	if existed {
		message = "Device already logged in"
	}
	return c.JSON(fiber.Map{"status": "success", "message": message, "userid": userID})
}

type favoriteRequest struct {
	UserID   ID     `json:"userid" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=add get"`
	MarketID ID     `json:"marketid" validate:"required_if=Action add"`
	Language string `json:"language"`
}

// AddToFavorite toggles a favourite market (action=add) or lists the user's
// favourites (action=get).
func (h *MobileController) AddToFavorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	if req.Action == "get" {
		favorites, err := h.store.Favorites(ctx, uint(req.UserID))
		if err != nil {
			log.Println("❌ Error fetching favorites:", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch favorites")
		}
		favorites = h.translateLocations(c, favorites, normalizeLanguage(req.Language))
		return c.JSON(fiber.Map{"status": "success", "favorites": favorites})
	}

	isFavorite, err := h.store.ToggleFavorite(ctx, uint(req.UserID), uint(req.MarketID))
	if err != nil {
		log.Println("❌ Error toggling favorite:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update favorite")
	}
	message := "Added to favorites"
	if isFavorite == 0 {
		message = "Removed from favorites"
	}
	return c.JSON(fiber.Map{"status": "success", "message": message, "isFavorite": isFavorite})
}

type allFavoritesRequest struct {
	UserID   ID     `json:"user_id" validate:"required"`
	Language string `json:"language"`
}

func (h *MobileController) GetAllFavorite(c *fiber.Ctx) error {
	var req allFavoritesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	favorites, err := h.store.Favorites(c.UserContext(), uint(req.UserID))
	if err != nil {
		log.Println("❌ Error fetching favorites:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch favorites")
	}
	if len(favorites) == 0 {
		return errorResponse(c, fiber.StatusNotFound, "No favorites found")
	}

	favorites = h.translateLocations(c, favorites, normalizeLanguage(req.Language))
	return c.JSON(fiber.Map{"status": "success", "data": favorites})
}

type alertRequest struct {
	Action     string `json:"action" validate:"required,oneof=add delete get"`
	ID         ID     `json:"id" validate:"required_if=Action delete"`
	UserID     ID     `json:"userid" validate:"required_if=Action add,required_if=Action get"`
	MarketID   ID     `json:"marketid" validate:"required_if=Action add"`
	Commodity  string `json:"commodity" validate:"required_if=Action add"`
	Variety    string `json:"variety"`
	Conditions string `json:"conditions" validate:"required_if=Action add,omitempty,oneof=greater less Greater Less"`
	Amount     Amount `json:"amount" validate:"required_if=Action add,omitempty,gt=0"`
	Language   string `json:"language"`
}

func alertMarketName(a *models.AlertListing) *string { return &a.MarketName }
func alertCommodity(a *models.AlertListing) *string  { return &a.Commodity }
func alertVariety(a *models.AlertListing) *string    { return &a.Variety }

// Alerts adds, deletes or lists price alerts depending on action.
func (h *MobileController) Alerts(c *fiber.Ctx) error {
	var req alertRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	switch req.Action {
	case "add":
		commodity := h.translator.DetectAndTranslateToEnglish(ctx, strings.TrimSpace(req.Commodity)).Text
		variety := strings.TrimSpace(req.Variety)
		if variety != "" {
			variety = h.translator.DetectAndTranslateToEnglish(ctx, variety).Text
		}
		alert := &models.Alert{
			UserID:     uint(req.UserID),
			MarketID:   uint(req.MarketID),
			Commodity:  commodity,
			Variety:    variety,
			Conditions: req.Conditions,
			Amount:     float64(req.Amount),
		}
		if err := h.store.AddAlert(ctx, alert); err != nil {
			log.Println("❌ Error adding alert:", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to add condition")
		}
		return c.JSON(fiber.Map{"status": "success", "message": "Condition added", "id": alert.ID})

	case "delete":
		deleted, err := h.store.DeleteAlert(ctx, uint(req.ID))
		if err != nil {
			log.Println("❌ Error deleting alert:", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete condition")
		}
		if !deleted {
			return errorResponse(c, fiber.StatusNotFound, "No record found with given id")
		}
		return c.JSON(fiber.Map{"status": "success", "message": "Condition deleted"})
	}

	alerts, err := h.store.AlertsForUser(ctx, uint(req.UserID))
	if err != nil {
		log.Println("❌ Error fetching alerts:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch conditions")
	}
	alerts = translation.BatchTranslate(ctx, h.translator, alerts, normalizeLanguage(req.Language),
		alertMarketName, alertCommodity, alertVariety)
	return c.JSON(fiber.Map{"status": "success", "data": alerts})
}

type bannerRequest struct {
	Language string `json:"language"`
}

func bannerTitle(b *models.Banner) *string       { return &b.Title }
func bannerDescription(b *models.Banner) *string { return &b.Description }

// Banner lists promotional banners. The language may come from the JSON body
// or, for GET, the query string.
func (h *MobileController) Banner(c *fiber.Ctx) error {
	var req bannerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Language == "" {
		req.Language = c.Query("language")
	}

	lang := normalizeLanguage(req.Language)

	stored, err := h.store.Banners(c.UserContext())
	if err != nil {
		log.Println("❌ Error fetching banners:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch banners")
	}

	// English banners are translated; banners written in the requested
	// language are served as written.
	var english, native []models.Banner
	for _, b := range stored {
		switch b.Language {
		case "", translation.LangEnglish:
			english = append(english, b)
		case lang:
			native = append(native, b)
		}
	}
	if len(english)+len(native) == 0 {
		return errorResponse(c, fiber.StatusNotFound, "No banners found")
	}

	english = translation.BatchTranslate(c.UserContext(), h.translator, english, lang, bannerTitle, bannerDescription)
	return c.JSON(fiber.Map{"status": "success", "data": append(native, english...)})
}

// SendAlertNotification evaluates every stored alert against the latest
// prices and pushes the matches.
func (h *MobileController) SendAlertNotification(c *fiber.Ctx) error {
	report, err := h.dispatcher.Dispatch(c.UserContext())
	if err != nil {
		log.Println("❌ Error dispatching alerts:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to process alerts")
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Alerts processed", "report": report})
}

type testNotificationRequest struct {
	Token string `json:"token" validate:"required"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *MobileController) TestNotification(c *fiber.Ctx) error {
	var req testNotificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Title == "" {
		req.Title = "Test Notification"
	}
	if req.Body == "" {
		req.Body = "This is a test notification from Khedut Bazaar"
	}

	msg := notification.NewMessage(req.Token, req.Title, req.Body)
	if err := h.dispatcher.Pusher().Push(c.UserContext(), msg); err != nil {
		log.Println("❌ Error sending test notification:", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to send notification: "+err.Error())
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Notification sent"})
}

// notFoundOr500 maps a store error to 404 when the row is missing.
func notFoundOr500(c *fiber.Ctx, err error, missing string) error {
	if errors.Is(err, database.ErrNotFound) {
		return errorResponse(c, fiber.StatusNotFound, missing)
	}
	log.Println("❌ Database error:", err)
	return errorResponse(c, fiber.StatusInternalServerError, "Database error")
}
