// Package catalog wires the content resources built on the generic
// resource handler.
package catalog

import "github.com/mathwaksu-byte/MathwaV2/utils/validation"

func setString(dst *string, v *string) {
	if v != nil {
		*dst = validation.SanitizeString(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
