// Package core holds the template functions shared by every page.
package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"github.com/target/calorie-tracker/internal/http/uiutil"
)

// Deps lets renderSection reach the parsed set it belongs to.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns the func map installed before parsing.
func Funcs(deps Deps) template.FuncMap {
	return template.FuncMap{
		"renderSection": renderSection(deps),
		"sectionTmpl":   deps.ContentTemplateFor,
		"mealDate":      uiutil.FormatMealDate,
		"shortDate":     uiutil.FormatShortDate,
		"formatNumber":  FormatNumber,
		"fieldError":    fieldError,
	}
}

// renderSection executes the content template for page into the layout.
func renderSection(deps Deps) func(string, any) (template.HTML, error) {
	return func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		name := deps.ContentTemplateFor(page)
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, name, data); err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
		// #nosec G203 output of html/template from the same set, already escaped
		return template.HTML(buf.String()), nil
	}
}

func fieldError(errs map[string]string, field string) string {
	return errs[field]
}

// FormatNumber groups the digits of an integer in threes: 12500 becomes "12,500".
// Non-integers are printed with fmt.
func FormatNumber(v any) string {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	default:
		return fmt.Sprint(v)
	}

	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}
