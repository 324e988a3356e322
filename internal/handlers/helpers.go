package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"recipeapp/internal/repositories"
	"recipeapp/internal/services"
	"recipeapp/internal/validation"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// normalizer is implemented by requests that clean their fields before
// validation, e.g. by trimming whitespace.
type normalizer interface {
	Normalize()
}

// parseBody decodes the request body into dst and validates it. It writes the
// 400 response itself and reports false when the handler should stop.
func parseBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	var nulls map[string]string
	if body := c.Body(); len(body) > 0 {
		if err := c.BodyParser(dst); err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("invalid request body")
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
		if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
			nulls = nullFields(body, dst)
		}
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	errs := validation.Struct(dst)
	for field, msg := range nulls {
		if errs == nil {
			errs = map[string]string{}
		}
		errs[field] = msg
	}
	if len(errs) > 0 {
		return false, validationFailed(c, errs)
	}
	return true, nil
}

// nullFields reports the fields of dst that body explicitly sets to null.
// Such fields decode like omitted ones, so they are caught on the raw body.
func nullFields(body []byte, dst interface{}) map[string]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	t := reflect.Indirect(reflect.ValueOf(dst)).Type()
	if t.Kind() != reflect.Struct {
		return nil
	}
	var errs map[string]string
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if v, ok := raw[name]; ok && string(bytes.TrimSpace(v)) == "null" {
			if errs == nil {
				errs = map[string]string{}
			}
			errs[name] = "This field may not be null."
		}
	}
	return errs
}

func validationFailed(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errs,
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found."})
}

// respondError maps service errors onto HTTP responses.
func respondError(c *fiber.Ctx, err error, action string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return validationFailed(c, verr.Fields)
	case errors.Is(err, repositories.ErrNotFound):
		return notFound(c)
	}
	log.Error().Err(err).Str("request_id", requestID(c)).Msg(action)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": action,
	})
}

// pathID parses the :id route parameter; anything but a positive integer is
// reported as not found.
func pathID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseIDList reads a comma separated id list such as "1,2,3". Empty
// tokens are skipped.
func parseIDList(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uint
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid id", tok)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
