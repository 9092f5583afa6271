// Package tools holds the fixed catalog of filter tools: their executors,
// argument schemas and the descriptions the router declares to the model.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"moviechat/internal/apperrors"
	"moviechat/internal/model"
	"moviechat/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// MovieStore is the find-by-field surface the executors read from
type MovieStore interface {
	FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error)
	FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error)
	FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error)
	FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error)
}

type tool struct {
	name        model.ToolName
	description string
	param       string
	schemaMap   map[string]any
	schema      *gojsonschema.Schema
	coerce      func(v any) (any, error)
	args        func(v any) model.FilterArgs
	run         func(ctx context.Context, store MovieStore, args model.FilterArgs) ([]model.MovieRecord, error)
}

// Registry binds each filter tool to its executor and schema
type Registry struct {
	store MovieStore
	tools map[model.ToolName]*tool
	order []model.ToolName
}

// NewRegistry creates the registry with the year bound set to the current year
func NewRegistry(store MovieStore) *Registry {
	return NewRegistryForYear(store, time.Now().Year())
}

// NewRegistryForYear creates the registry with currentYear as the latest valid year
func NewRegistryForYear(store MovieStore, currentYear int) *Registry {
	defs := []*tool{
		{
			name:        model.ToolSearchRating,
			description: "Find movies by rating (0–10). Returns movies rated at or above the given number.",
			param:       "rating",
			schemaMap:   ratingSchema(),
			coerce:      coerceNumber,
			args: func(v any) model.FilterArgs {
				r := v.(float64)
				return model.FilterArgs{Rating: &r}
			},
			run: func(ctx context.Context, s MovieStore, a model.FilterArgs) ([]model.MovieRecord, error) {
				return s.FindByMinRating(ctx, *a.Rating)
			},
		},
		{
			name:        model.ToolYearSearch,
			description: "Find movies by 4-digit release year.",
			param:       "year",
			schemaMap:   yearSchema(currentYear),
			coerce:      coerceNumber,
			args: func(v any) model.FilterArgs {
				y := int(v.(float64))
				return model.FilterArgs{Year: &y}
			},
			run: func(ctx context.Context, s MovieStore, a model.FilterArgs) ([]model.MovieRecord, error) {
				return s.FindByYear(ctx, *a.Year)
			},
		},
		{
			name:        model.ToolTitleSearch,
			description: "Find movies by title (case-insensitive, partial titles match).",
			param:       "title",
			schemaMap:   titleSchema(),
			coerce:      coerceString,
			args: func(v any) model.FilterArgs {
				t := v.(string)
				return model.FilterArgs{Title: &t}
			},
			run: func(ctx context.Context, s MovieStore, a model.FilterArgs) ([]model.MovieRecord, error) {
				return s.FindByTitle(ctx, *a.Title)
			},
		},
		{
			name:        model.ToolGenreSearch,
			description: "Find movies by genre (Action, Comedy, Drama, Horror, Sci-Fi, Romance, etc.). Partial genre names match composite labels, so Thriller matches Action-Thriller.",
			param:       "genre",
			schemaMap:   genreSchema(),
			coerce:      coerceGenre,
			args: func(v any) model.FilterArgs {
				g := v.(string)
				return model.FilterArgs{Genre: &g}
			},
			run: func(ctx context.Context, s MovieStore, a model.FilterArgs) ([]model.MovieRecord, error) {
				return s.FindByGenre(ctx, *a.Genre)
			},
		},
	}

	r := &Registry{store: store, tools: make(map[model.ToolName]*tool, len(defs))}
	for _, d := range defs {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(d.schemaMap))
		if err != nil {
			panic(fmt.Sprintf("invalid schema for %s: %v", d.name, err))
		}
		d.schema = schema
		r.tools[d.name] = d
		r.order = append(r.order, d.name)
	}
	return r
}

// Names returns the registered tool names in declaration order
func (r *Registry) Names() []model.ToolName {
	return append([]model.ToolName(nil), r.order...)
}

// Known reports whether name is a registered tool
func (r *Registry) Known(name string) bool {
	_, ok := r.tools[model.ToolName(name)]
	return ok
}

// Definitions returns the tool descriptors declared to the model
func (r *Registry) Definitions() []ToolDef {
	defs := make([]ToolDef, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, ToolDef{
			Type: "function",
			Function: ToolFunction{
				Name:        string(t.name),
				Description: t.description,
				Parameters:  t.schemaMap,
			},
		})
	}
	return defs
}

// Parse validates a proposed tool call and turns it into a FilterSpec.
// raw may be a JSON object or a JSON string holding one.
func (r *Registry) Parse(name string, raw json.RawMessage) (model.FilterSpec, error) {
	t, ok := r.tools[model.ToolName(name)]
	if !ok {
		return model.FilterSpec{}, apperrors.NewUnknownToolError(name)
	}

	args, err := decodeArguments(raw)
	if err != nil {
		return model.FilterSpec{}, apperrors.NewValidationError(name, err.Error())
	}

	value, present := args[t.param]
	if !present || value == nil {
		return model.FilterSpec{}, apperrors.NewValidationError(name, t.param+" is required")
	}

	coerced, err := t.coerce(value)
	if err != nil {
		return model.FilterSpec{}, apperrors.NewValidationError(name, fmt.Sprintf("%s: %v", t.param, err))
	}

	if err := t.validate(coerced); err != nil {
		return model.FilterSpec{}, err
	}

	return model.FilterSpec{Tool: t.name, Args: t.args(coerced)}, nil
}

// Validate checks an already built FilterSpec against its tool's schema
func (r *Registry) Validate(spec model.FilterSpec) error {
	t, ok := r.tools[spec.Tool]
	if !ok {
		return apperrors.NewUnknownToolError(string(spec.Tool))
	}

	value, ok := argValue(spec)
	if !ok || spec.Tool != specTool(spec) {
		return apperrors.NewValidationError(string(spec.Tool), t.param+" is required")
	}
	return t.validate(value)
}

// Execute validates spec and runs its executor against the store. Invalid
// arguments fail before the store is touched.
func (r *Registry) Execute(ctx context.Context, spec model.FilterSpec) ([]model.MovieRecord, error) {
	if err := r.Validate(spec); err != nil {
		return nil, err
	}

	movies, err := r.tools[spec.Tool].run(ctx, r.store, spec.Args)
	if err != nil {
		return nil, apperrors.NewExecutorError(string(spec.Tool), err)
	}
	if movies == nil {
		movies = []model.MovieRecord{}
	}
	return movies, nil
}

func (t *tool) validate(value any) error {
	result, err := t.schema.Validate(gojsonschema.NewGoLoader(map[string]any{t.param: value}))
	if err != nil {
		return apperrors.NewValidationError(string(t.name), err.Error())
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewValidationError(string(t.name), strings.Join(errs, "; "))
	}
	return nil
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	// Some endpoints send arguments as a JSON-encoded string
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("malformed arguments: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return map[string]any{}, nil
		}
		raw = json.RawMessage(s)
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

func coerceNumber(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected a number, got %q", n)
		}
		return f, nil
	}
	return nil, fmt.Errorf("expected a number, got %T", v)
}

func coerceString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	}
	return nil, fmt.Errorf("expected a string, got %T", v)
}

func coerceGenre(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
	return utils.NormalizeGenre(s), nil
}

// argValue returns the set argument of spec in the shape the schema expects
func argValue(spec model.FilterSpec) (any, bool) {
	a := spec.Args
	switch {
	case a.Rating != nil:
		return *a.Rating, true
	case a.Year != nil:
		return *a.Year, true
	case a.Title != nil:
		return strings.TrimSpace(*a.Title), true
	case a.Genre != nil:
		return *a.Genre, true
	}
	return nil, false
}

// specTool returns the tool matching the argument set on spec
func specTool(spec model.FilterSpec) model.ToolName {
	a := spec.Args
	switch {
	case a.Rating != nil:
		return model.ToolSearchRating
	case a.Year != nil:
		return model.ToolYearSearch
	case a.Title != nil:
		return model.ToolTitleSearch
	case a.Genre != nil:
		return model.ToolGenreSearch
	}
	return ""
}
