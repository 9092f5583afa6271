package tools

// ToolDef is a callable tool declared to an OpenAI-compatible chat endpoint
type ToolDef struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes the function behind a ToolDef. Parameters is a
// JSON Schema object, the same one used to validate proposed arguments.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func objectSchema(param string, property map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{param: property},
		"required":             []string{param},
		"additionalProperties": true,
	}
}

func ratingSchema() map[string]any {
	return objectSchema("rating", map[string]any{
		"type":        "number",
		"minimum":     0,
		"maximum":     10,
		"description": "Minimum rating between 0 and 10, inclusive",
	})
}

func yearSchema(currentYear int) map[string]any {
	return objectSchema("year", map[string]any{
		"type":        "integer",
		"minimum":     1900,
		"maximum":     currentYear,
		"description": "4-digit release year",
	})
}

func titleSchema() map[string]any {
	return objectSchema("title", map[string]any{
		"type":        "string",
		"minLength":   1,
		"description": "Movie title or part of it",
	})
}

func genreSchema() map[string]any {
	return objectSchema("genre", map[string]any{
		"type":        "string",
		"minLength":   3,
		"maxLength":   40,
		"description": "Genre label such as Action, Comedy, Drama, Horror, Sci-Fi",
	})
}
