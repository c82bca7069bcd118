package config

import (
	"fmt"
	"reflect"
	"strconv"
)

// getField reads the yaml-tagged field of v matching name and renders
// it as a string, the read side of the "section.key" Get/Set surface.
// Implemented with reflection rather than a hand-written switch per
// section since every section here is a flat struct of ints/strings.
func getField(v any, name string) (string, error) {
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if yamlName(rt.Field(i)) != name {
			continue
		}
		return fmt.Sprintf("%v", rv.Field(i).Interface()), nil
	}
	return "", fmt.Errorf("unknown field: %s", name)
}

// setField writes value into the yaml-tagged field of *v matching name,
// parsed according to the field's kind.
func setField(v any, name, value string) error {
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if yamlName(rt.Field(i)) != name {
			continue
		}
		field := rv.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			field.SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("field %s: unsupported type %s", name, field.Kind())
		}
		return nil
	}
	return fmt.Errorf("unknown field: %s", name)
}

func yamlName(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if tag == "" {
		return f.Name
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			return tag[:i]
		}
	}
	return tag
}
