// Package datagen produces throwaway test data such as unique names,
// email addresses and numeric strings.
package datagen

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/entrhq/uiharness/pkg/config"
)

// MaxUniqueLength is the longest string UniqueString can return; longer
// requests are capped.
const MaxUniqueLength = 32

// MaxNumberDigits bounds NumericString so the result fits an int64.
const MaxNumberDigits = 18

// UniqueString returns a random lowercase hex string whose length is drawn
// uniformly from [minLength, maxLength], capped at MaxUniqueLength.
func UniqueString(minLength, maxLength int) (string, error) {
	if minLength < 1 || maxLength < minLength {
		return "", &config.ArgumentError{
			Argument: "length",
			Reason:   fmt.Sprintf("invalid length range: min=%d, max=%d", minLength, maxLength),
		}
	}

	length := minLength + rand.IntN(maxLength-minLength+1)
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:min(length, len(id))], nil
}

// Email returns an address of the form test_<8-12 hex chars>@test.com.
func Email() string {
	local, _ := UniqueString(8, 12)
	return "test_" + local + "@test.com"
}

// NumericString returns a string of exactly digits random decimal digits.
// Leading zeros are allowed.
func NumericString(digits int) (string, error) {
	if digits < 1 || digits > MaxNumberDigits {
		return "", &config.ArgumentError{
			Argument: "digits",
			Reason:   fmt.Sprintf("must be between 1 and %d, got %d", MaxNumberDigits, digits),
		}
	}

	var b strings.Builder
	b.Grow(digits)
	for i := 0; i < digits; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String(), nil
}
