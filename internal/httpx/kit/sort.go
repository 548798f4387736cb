package kit

import (
	"strings"

	"github.com/samber/lo"
)

// ParseSort splits "field[:asc|desc]" and checks field against allowed.
func ParseSort(spec string, allowed ...string) (field string, desc bool, err error) {
	if spec == "" {
		return "", false, nil
	}
	parts := strings.Split(spec, ":")
	field = strings.TrimSpace(parts[0])
	dir := lo.TernaryF(len(parts) > 1,
		func() string { return strings.ToLower(strings.TrimSpace(parts[1])) },
		func() string { return "asc" },
	)
	switch dir {
	case "asc":
	case "desc":
		desc = true
	default:
		return "", false, BadRequest("invalid sort direction", dir)
	}
	if !lo.Contains(allowed, field) {
		return "", false, BadRequest("invalid sort field", field)
	}
	return field, desc, nil
}
