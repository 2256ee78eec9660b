package export

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/lepinkainen/literalura/internal/store"
)

// rowOptions configures toRow behavior.
type rowOptions struct {
	OmitFields map[string]bool
}

var (
	authorRowOptions = rowOptions{OmitFields: map[string]bool{"Books": true}}
	bookRowOptions   = rowOptions{OmitFields: map[string]bool{"AuthorName": true}}
)

// toRow converts a struct into a row keyed by snake_case field names.
// Nil pointers become nil values.
func toRow[T any](value T, opts rowOptions) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return result
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" || opts.OmitFields[field.Name] {
			continue
		}

		value := v.Field(i)
		if value.Kind() == reflect.Pointer {
			if value.IsNil() {
				result[toSnakeCase(field.Name)] = nil
				continue
			}
			value = value.Elem()
		}
		result[toSnakeCase(field.Name)] = value.Interface()
	}
	return result
}

func authorRows(authors []store.Author) []map[string]any {
	rows := make([]map[string]any, 0, len(authors))
	for _, a := range authors {
		rows = append(rows, toRow(a, authorRowOptions))
	}
	return rows
}

func bookRows(books []store.Book) []map[string]any {
	rows := make([]map[string]any, 0, len(books))
	for _, b := range books {
		rows = append(rows, toRow(b, bookRowOptions))
	}
	return rows
}

func toSnakeCase(input string) string {
	if input == "" {
		return ""
	}

	runes := []rune(input)
	var builder strings.Builder
	builder.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				var next rune
				if i+1 < len(runes) {
					next = runes[i+1]
				}
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					builder.WriteRune('_')
				} else if unicode.IsUpper(prev) && next != 0 && unicode.IsLower(next) {
					builder.WriteRune('_')
				}
			}
			builder.WriteRune(unicode.ToLower(r))
			continue
		}

		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}
