package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var scriptPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxQuestions        int
	MaxQuestionLength   int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware screens run requests before they reach the handler:
// content type, document URL shape, and question count and length.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQuestions == 0 {
		cfg.MaxQuestions = 50
	}
	if cfg.MaxQuestionLength == 0 {
		cfg.MaxQuestionLength = 2000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get(fiber.HeaderContentType)
			if contentType != "" && !allowedType(contentType, cfg.AllowedContentTypes) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		if strings.HasSuffix(c.Path(), "/run") && c.Method() == fiber.MethodPost {
			if err := validateRunRequest(c, cfg); err != nil {
				return err
			}
		}

		return c.Next()
	}
}

func validateRunRequest(c *fiber.Ctx, cfg Config) error {
	var req struct {
		Documents string   `json:"documents"`
		Questions []string `json:"questions"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON format",
		})
	}

	if req.Documents == "" {
		return badRequest(c, "documents is required")
	}
	if !isValidURL(req.Documents) {
		return badRequest(c, "documents must be a valid http(s) URL")
	}

	if len(req.Questions) == 0 {
		return badRequest(c, "questions must be a non-empty array")
	}
	if len(req.Questions) > cfg.MaxQuestions {
		return badRequest(c, "too many questions")
	}

	for _, q := range req.Questions {
		if strings.TrimSpace(q) == "" {
			return badRequest(c, "questions must not be blank")
		}
		if len(q) > cfg.MaxQuestionLength {
			return badRequest(c, "question exceeds maximum length")
		}
		if scriptPattern.MatchString(q) {
			cfg.Logger.Warn("Rejected question with markup",
				zap.String("ip", c.IP()),
			)
			return badRequest(c, "Invalid question content")
		}
	}

	return nil
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func allowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
