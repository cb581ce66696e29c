package controllers

import (
	"fmt"
	"strings"

	"khedutbazaar/translation"

	"github.com/gofiber/fiber/v2"
)

// TranslationController manages the translator's language list and its
// custom overrides.
type TranslationController struct {
	translator *translation.Translator
}

func NewTranslationController(t *translation.Translator) *TranslationController {
	return &TranslationController{translator: t}
}

func (h *TranslationController) Languages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "success",
		"data":         translation.SupportedLanguages(),
		"custom_count": h.translator.CustomCount(),
	})
}

type customTranslationRequest struct {
	Text        string `json:"text" validate:"required"`
	Translation string `json:"translation" validate:"required"`
	Target      string `json:"target" validate:"required,oneof=en hi gu"`
}

// AddCustom registers an override for text in target. Overrides apply to
// single and batch translations immediately.
func (h *TranslationController) AddCustom(c *fiber.Ctx) error {
	var req customTranslationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	h.translator.AddCustomTranslation(text, strings.TrimSpace(req.Translation), req.Target)
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": fmt.Sprintf("Custom translation for %q added in %s", text, translation.LanguageName(req.Target)),
	})
}
