package suggestion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyReply is returned when the model reply contains no text.
var ErrEmptyReply = errors.New("empty reply from model")

// ErrIncompleteReply is returned when the reply is too short to contain
// all required fields.
var ErrIncompleteReply = errors.New("incomplete reply from model")

// MissingFieldError reports required labels that had no matching line.
// The caller decides whether this is fatal; the remaining fields are
// still populated.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing fields in model reply: %s", strings.Join(e.Fields, ", "))
}

var requiredLabels = []string{"item", "description", "location", "price", "calories"}

var nutritionLabels = []string{"protein", "carbs", "fat", "fiber", "sugar"}

// ParsedFields is the label-to-value extraction of one model reply.
type ParsedFields struct {
	Item         string
	Description  string
	Location     string
	Price        string
	Calories     string
	Nutrition    DetailedNutritionInfo
	HasNutrition bool
}

// Parse extracts labeled fields from a model reply. The expected grammar
// is one "Label: value" per line; labels match case-insensitively, the
// first occurrence of a label wins, and line order does not matter.
func Parse(raw string) (ParsedFields, error) {
	var parsed ParsedFields

	if strings.TrimSpace(raw) == "" {
		return parsed, ErrEmptyReply
	}

	fields := make(map[string]string)
	nonBlank := 0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonBlank++

		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		label = strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, seen := fields[label]; !seen {
			fields[label] = value
		}
	}

	if nonBlank < 5 {
		return parsed, ErrIncompleteReply
	}

	parsed.Item = fields["item"]
	parsed.Description = fields["description"]
	parsed.Location = fields["location"]
	parsed.Price = fields["price"]
	parsed.Calories = fields["calories"]

	for _, label := range nutritionLabels {
		if _, ok := fields[label]; ok {
			parsed.HasNutrition = true
			break
		}
	}
	if parsed.HasNutrition {
		parsed.Nutrition = DetailedNutritionInfo{
			Protein: parseGrams(fields["protein"]),
			Carbs:   parseGrams(fields["carbs"]),
			Fat:     parseGrams(fields["fat"]),
			Fiber:   parseGrams(fields["fiber"]),
			Sugar:   parseGrams(fields["sugar"]),
		}
	}

	var missing []string
	for _, label := range requiredLabels {
		if fields[label] == "" {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return parsed, &MissingFieldError{Fields: missing}
	}

	return parsed, nil
}

// parseGrams reads a numeric value leniently: "12g", "12.5 grams" and
// plain numbers all work, anything non-numeric degrades to 0.
func parseGrams(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
