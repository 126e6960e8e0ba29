package storage

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	Type = "storage"

	EncryptionS3  = "s3"
	EncryptionKMS = "kms"

	DefaultArchiveDays = 45
	MinArchiveDays     = 30
)

var ErrInvalidConfiguration = errors.New("invalid storage configuration")

// Configuration is the user-facing schema of a storage construct.
type Configuration struct {
	Type string `yaml:"type" validate:"required,eq=storage"`
	// Archive is the retention threshold, in days, before objects are considered archived.
	Archive    int                    `yaml:"archive" validate:"min=30"`
	Encryption string                 `yaml:"encryption" validate:"oneof=s3 kms"`
	Extensions map[string]interface{} `yaml:"extensions"`
}

// Defaults returns the configuration applied underneath user values.
func Defaults() Configuration {
	return Configuration{
		Type:       Type,
		Archive:    DefaultArchiveDays,
		Encryption: EncryptionS3,
		Extensions: map[string]interface{}{},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their configuration key
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration against the schema.
func (c Configuration) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	problems := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return describe(fe)
	})
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "eq":
		return fmt.Sprintf("%q must be %q, got %v", fe.Field(), fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%q must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s], got %v", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("%q failed %s validation", fe.Field(), fe.Tag())
	}
}

// DecodeConfiguration merges raw on top of Defaults and validates the result. Keys outside the
// schema are rejected.
func DecodeConfiguration(raw map[string]interface{}) (Configuration, error) {
	cfg := Defaults()
	if len(raw) == 0 {
		return cfg, cfg.Validate()
	}
	if err := checkWholeDays(raw["archive"]); err != nil {
		return Configuration{}, err
	}

	encoded, err := yaml.Marshal(raw)
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(encoded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if cfg.Extensions == nil {
		cfg.Extensions = map[string]interface{}{}
	}

	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// checkWholeDays rejects fractional day counts, which decoding into an int would truncate.
func checkWholeDays(v interface{}) error {
	var days float64
	switch n := v.(type) {
	case float64:
		days = n
	case float32:
		days = float64(n)
	default:
		return nil
	}
	if days != math.Trunc(days) {
		return fmt.Errorf("%w: %q must be a whole number of days, got %v", ErrInvalidConfiguration, "archive", v)
	}
	return nil
}
