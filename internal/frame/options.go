package frame

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Options controls what a single frame invocation does and returns.
type Options struct {
	IncludeBoxes       bool `json:"includeBoxes"       mapstructure:"include_boxes"        yaml:"include_boxes"`
	IncludeConfidence  bool `json:"includeConfidence"  mapstructure:"include_confidence"   yaml:"include_confidence"`
	UseImageProcessing bool `json:"useImageProcessing" mapstructure:"use_image_processing" yaml:"use_image_processing"`
	MultipleAttempts   bool `json:"multipleAttempts"   mapstructure:"multiple_attempts"    yaml:"multiple_attempts"`

	// Accepted for compatibility with callers that send them. They are
	// logged and have no effect on processing.
	RecognitionLevel     string   `json:"recognitionLevel,omitempty"     mapstructure:"-" yaml:"-"`
	RecognitionLanguages []string `json:"recognitionLanguages,omitempty" mapstructure:"-" yaml:"-"`
	Model                string   `json:"model,omitempty"                mapstructure:"-" yaml:"-"`
}

// DefaultOptions enables image processing and multiple attempts.
func DefaultOptions() Options {
	return Options{
		UseImageProcessing: true,
		MultipleAttempts:   true,
	}
}

// Option keys as sent by callers.
const (
	KeyIncludeBoxes         = "includeBoxes"
	KeyIncludeConfidence    = "includeConfidence"
	KeyUseImageProcessing   = "useImageProcessing"
	KeyMultipleAttempts     = "multipleAttempts"
	KeyRecognitionLevel     = "recognitionLevel"
	KeyRecognitionLanguages = "recognitionLanguages"
	KeyModel                = "model"
)

// ParseOptions overlays loosely typed caller arguments on base. Values of
// the wrong type leave the base value in place; unknown keys are ignored.
// Nothing here fails: bad input degrades to defaults and is logged.
func ParseOptions(raw map[string]any, base Options) Options {
	opts := base
	for key, val := range raw {
		switch key {
		case KeyIncludeBoxes:
			opts.IncludeBoxes = boolOr(key, val, opts.IncludeBoxes)
		case KeyIncludeConfidence:
			opts.IncludeConfidence = boolOr(key, val, opts.IncludeConfidence)
		case KeyUseImageProcessing:
			opts.UseImageProcessing = boolOr(key, val, opts.UseImageProcessing)
		case KeyMultipleAttempts:
			opts.MultipleAttempts = boolOr(key, val, opts.MultipleAttempts)
		case KeyRecognitionLevel:
			opts.RecognitionLevel = fmt.Sprint(val)
		case KeyRecognitionLanguages:
			opts.RecognitionLanguages = languageTags(val)
		case KeyModel:
			opts.Model = fmt.Sprint(val)
		default:
			slog.Debug("Ignoring unknown frame option", "key", key)
		}
	}

	if opts.RecognitionLevel != "" || len(opts.RecognitionLanguages) > 0 || opts.Model != "" {
		slog.Debug("Recognition hints accepted without effect",
			"recognition_level", opts.RecognitionLevel,
			"recognition_languages", opts.RecognitionLanguages,
			"model", opts.Model)
	}
	return opts
}

// ParseStringOptions is ParseOptions for form or query values.
func ParseStringOptions(get func(string) string, base Options) Options {
	raw := make(map[string]any)
	for _, key := range []string{
		KeyIncludeBoxes, KeyIncludeConfidence, KeyUseImageProcessing, KeyMultipleAttempts,
		KeyRecognitionLevel, KeyRecognitionLanguages, KeyModel,
	} {
		if v := get(key); v != "" {
			raw[key] = v
		}
	}
	return ParseOptions(raw, base)
}

func boolOr(key string, val any, fallback bool) bool {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	slog.Debug("Frame option is not a boolean, keeping default", "key", key, "value", val)
	return fallback
}

// languageTags accepts a list or a comma separated string and keeps the
// entries that parse as BCP 47 tags, in canonical form.
func languageTags(val any) []string {
	var raw []string
	switch v := val.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	tags := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		tag, err := language.Parse(s)
		if err != nil {
			slog.Debug("Dropping invalid recognition language", "value", s, "error", err)
			continue
		}
		tags = append(tags, tag.String())
	}
	return tags
}
