package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/glorpus-work/tally/pkg/errors"
)

// SetValue sets a setting by its YAML key. The result is not validated.
func (c *Config) SetValue(key, value string) error {
	field, ok := settingField(&c.Settings, key)
	if !ok {
		return errors.Wrap(errors.ErrUnknownConfigKey, key)
	}
	switch field.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		field.SetBool(b)
	case reflect.String:
		field.SetString(value)
	default:
		return errors.Wrap(errors.ErrUnknownConfigKey, key)
	}
	return nil
}

// GetValue returns a setting by its YAML key.
func (c *Config) GetValue(key string) (string, error) {
	v, ok := c.ToMap()[key]
	if !ok {
		return "", errors.Wrap(errors.ErrUnknownConfigKey, key)
	}
	return v, nil
}

// ToMap returns all settings keyed by their YAML names.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()
	for i := 0; i < settingsValue.NumField(); i++ {
		key := yamlKey(settingsType.Field(i))
		if key == "" {
			continue
		}
		fieldValue := settingsValue.Field(i)
		switch fieldValue.Kind() {
		case reflect.Bool:
			result[key] = strconv.FormatBool(fieldValue.Bool())
		default:
			result[key] = fmt.Sprintf("%v", fieldValue.Interface())
		}
	}
	return result
}

func settingField(s *Settings, key string) (reflect.Value, bool) {
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if yamlKey(t.Field(i)) == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func yamlKey(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

// yamlName maps a Go field name of Settings onto its YAML key.
func yamlName(field string) string {
	if f, ok := reflect.TypeOf(Settings{}).FieldByName(field); ok {
		if k := yamlKey(f); k != "" {
			return k
		}
	}
	return field
}
