package validate

import (
	"regexp"

	"eapassist/internal/core"
)

// toolNamePattern matches the function-name charset the upstream providers accept.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTools checks tool definitions before they are forwarded upstream.
// Tools with invalid names are skipped with a warning rather than failing the
// whole request; missing parameter schemas are normalized to an empty object
// schema so every provider receives a well-formed declaration.
func ValidateTools(tools []core.Tool, logger core.Logger) []core.Tool {
	if len(tools) == 0 {
		return tools
	}

	validated := make([]core.Tool, 0, len(tools))
	skipped := 0

	for _, tool := range tools {
		if tool.Type != core.ToolTypeFunction {
			logger.Warn("Skipping tool with unsupported type: %q", tool.Type)
			skipped++
			continue
		}
		if !toolNamePattern.MatchString(tool.Function.Name) {
			logger.Warn("Skipping tool with invalid name: %q", tool.Function.Name)
			skipped++
			continue
		}

		validated = append(validated, core.Tool{
			Type: tool.Type,
			Function: core.ToolFunction{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  normalizeParameters(tool.Function.Parameters),
			},
		})
	}

	if skipped > 0 {
		logger.Warn("Tool validation: %d/%d tools skipped", skipped, len(tools))
	}

	return validated
}

func normalizeParameters(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	if _, ok := params["type"]; !ok {
		normalized := make(map[string]any, len(params)+1)
		for k, v := range params {
			normalized[k] = v
		}
		normalized["type"] = "object"
		return normalized
	}
	return params
}
