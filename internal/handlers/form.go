package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"engagedash/internal/models"
	"engagedash/internal/validation"
)

// queryValues returns every value of a repeated query parameter. Values may
// also be comma separated.
func queryValues(c fiber.Ctx, key string) []string {
	return splitValues(c.Request().URI().QueryArgs().PeekMulti(key))
}

// formValues returns every value of a repeated urlencoded form field.
func formValues(c fiber.Ctx, key string) []string {
	values := splitValues(c.Request().PostArgs().PeekMulti(key))
	if len(values) == 0 && c.FormValue(key) != "" {
		values = splitValues([][]byte{[]byte(c.FormValue(key))})
	}
	return values
}

func splitValues(raw [][]byte) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(string(r), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// parsePredictionForm reads the dashboard's prediction form. Only parsing
// happens here; range checks are left to validation.ValidateStruct.
func parsePredictionForm(c fiber.Ctx) (models.PredictionForm, error) {
	var (
		form models.PredictionForm
		errs validation.Errors
	)

	parseInt := func(field string) int64 {
		raw := strings.TrimSpace(c.FormValue(field))
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, numberError(field, raw))
		}
		return n
	}
	parseFloat := func(field string) float64 {
		raw := strings.TrimSpace(c.FormValue(field))
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, numberError(field, raw))
		}
		return f
	}

	form.Followers = parseInt("followers")
	form.HashtagCount = int(parseInt("hashtag_count"))
	form.LikeRate = parseFloat("like_rate")
	form.CommentRate = parseFloat("comment_rate")
	form.ShareRate = parseFloat("share_rate")
	form.LinkClickRate = parseFloat("link_click_rate")
	form.CaptionLength = int(parseInt("caption_length"))
	form.Hour = int(parseInt("hour"))
	form.Platforms = formValues(c, "platform")
	form.ContentTypes = formValues(c, "content_type")
	form.DayOfWeek = strings.TrimSpace(c.FormValue("day_of_week"))

	if len(errs) > 0 {
		return form, errs
	}
	return form, nil
}

func numberError(field, raw string) validation.FieldError {
	msg := fmt.Sprintf("%s must be a number", field)
	if raw == "" {
		msg = fmt.Sprintf("%s is required", field)
	}
	return validation.FieldError{Field: field, Tag: "number", Message: msg}
}
