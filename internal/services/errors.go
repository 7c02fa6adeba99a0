package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks a record missing a required field. Recovered
	// locally: the record is skipped and the run continues.
	ErrMalformedInput = errors.New("malformed input")
	// ErrOutOfOrderLevel marks a record whose level skipped past the open
	// lineage. Recovered by the builder's fallback attachment.
	ErrOutOfOrderLevel = errors.New("out-of-order level")
	// ErrUnresolvableCollision means the resolver could not produce a unique
	// name. Fatal.
	ErrUnresolvableCollision = errors.New("unresolvable name collision")
	// ErrIdentifierCollision means identifier suffixing failed to produce a
	// unique key. Fatal.
	ErrIdentifierCollision = errors.New("identifier collision after suffix")
	// ErrInvariant marks a whole-tree invariant violation detected before
	// export. Fatal.
	ErrInvariant = errors.New("tree invariant violated")

	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the export step.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrMalformedInput), errors.Is(err, ErrOutOfOrderLevel):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
