// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reference

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/ballotcheck/models"
)

var ErrInvalidReference = errors.New("invalid reference tables")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return models.IsRegion(fl.Field().String())
	})
	return v
}

// Load reads a reference YAML file.
func Load(path string) (models.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Reference{}, err
	}
	ref, err := Parse(data)
	if err != nil {
		return models.Reference{}, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

// Parse decodes and checks reference tables. Unknown keys are rejected.
func Parse(data []byte) (models.Reference, error) {
	var ref models.Reference

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ref); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Reference{}, fmt.Errorf("%w: empty document", ErrInvalidReference)
		}
		return models.Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	if err := Check(ref); err != nil {
		return models.Reference{}, err
	}
	return ref, nil
}

// Check validates entries and rejects empty tables and duplicate keys.
func Check(ref models.Reference) error {
	if len(ref.Provinces) == 0 {
		return fmt.Errorf("%w: no provinces", ErrInvalidReference)
	}
	if len(ref.Parties) == 0 {
		return fmt.Errorf("%w: no parties", ErrInvalidReference)
	}

	if err := validate.Struct(ref); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		problems := make([]string, len(verrs))
		for i, fe := range verrs {
			problems[i] = fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag())
		}
		return fmt.Errorf("%w: %s", ErrInvalidReference, strings.Join(problems, "; "))
	}

	codes := make(map[string]bool, len(ref.Provinces))
	for _, p := range ref.Provinces {
		if codes[p.Code] {
			return fmt.Errorf("%w: duplicate province code %s", ErrInvalidReference, p.Code)
		}
		codes[p.Code] = true
	}
	names := make(map[string]bool, len(ref.Parties))
	for _, p := range ref.Parties {
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate party %q", ErrInvalidReference, p.Name)
		}
		names[p.Name] = true
	}

	return nil
}

// fieldPath turns "Reference.Provinces[3].Code" into "provinces[3].code".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Reference.")
	return strings.ToLower(ns)
}
