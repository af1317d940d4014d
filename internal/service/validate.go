package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"animator-service/internal/entity"
	"animator-service/internal/models"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check collects every reason the shot cannot be submitted to the model.
// It never touches the network.
func (s *GenerationService) check(modelID string, model models.Model, known bool, shot entity.ShotConfig, settings entity.ModelSettings) []string {
	var problems []string

	if strings.TrimSpace(shot.Prompt) == "" {
		problems = append(problems, "prompt is required")
	}
	if strings.TrimSpace(shot.ImageURL) == "" {
		problems = append(problems, "image is required")
	}
	problems = append(problems, s.checkSettings(settings)...)

	if !known {
		return append(problems, fmt.Sprintf("unknown model %q", modelID))
	}

	if model.MaxDuration > 0 && settings.Duration > model.MaxDuration {
		problems = append(problems, fmt.Sprintf("duration %ds exceeds the %s maximum of %ds", settings.Duration, model.DisplayName, model.MaxDuration))
	}
	if settings.Resolution != "" && !model.SupportsResolution(settings.Resolution) {
		problems = append(problems, fmt.Sprintf("resolution %s is not supported by %s", settings.Resolution, model.DisplayName))
	}
	if settings.AspectRatio != "" && !model.SupportsAspectRatio(settings.AspectRatio) {
		problems = append(problems, fmt.Sprintf("aspect ratio %s is not supported by %s", settings.AspectRatio, model.DisplayName))
	}

	if refs := len(shot.ReferenceImages); refs > 0 {
		switch {
		case model.MaxReferenceImages == 0:
			problems = append(problems, fmt.Sprintf("%s does not accept reference images", model.DisplayName))
		case refs > model.MaxReferenceImages:
			problems = append(problems, fmt.Sprintf("%s accepts at most %d reference images, got %d", model.DisplayName, model.MaxReferenceImages, refs))
		}
		if model.BlocksReferencesAt(settings.Resolution) {
			problems = append(problems, fmt.Sprintf("%s cannot use reference images at %s", model.DisplayName, settings.Resolution))
		}
	}
	if shot.LastFrameImage != "" && !model.SupportsLastFrame {
		problems = append(problems, fmt.Sprintf("%s does not support a last frame image", model.DisplayName))
	}

	return problems
}

func (s *GenerationService) checkSettings(settings entity.ModelSettings) []string {
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, describeFieldError(fe))
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
