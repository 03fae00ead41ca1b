package drive

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/rohits-web03/cloudvault/internal/domain"
)

const MaxNameLength = 255

var nameRules = []validation.Rule{
	validation.Required.Error("name is required"),
	validation.RuneLength(1, MaxNameLength),
	validation.Match(regexp.MustCompile(`^[^/\\]+$`)).Error("name cannot contain slashes"),
	validation.NotIn(".", "..").Error("name is reserved"),
}

// cleanName trims name and checks it against the folder/file naming rules.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, nameRules...); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}

func checkSize(size int64) error {
	if err := validation.Validate(size, validation.Min(int64(0)).Error("size cannot be negative")); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
