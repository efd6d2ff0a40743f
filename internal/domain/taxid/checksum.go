package taxid

import (
	"strings"

	ierr "github.com/mariiahub/taxcore/internal/errors"
)

// identifierLength is the fixed length of a normalized identifier:
// a 9-digit payload plus 1 check digit.
const identifierLength = 10

// checksumWeights is the public weight vector applied to the 9-digit payload.
var checksumWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// Normalize strips separators and an optional country prefix from a raw
// identifier. It fails when the result is not exactly 10 digits.
func Normalize(raw string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(strings.ToUpper(cleaned), "PL")

	if len(cleaned) != identifierLength {
		return "", ierr.NewError("identifier must be exactly 10 digits").
			WithHint("Tax identifier must contain exactly 10 digits").
			WithReportableDetails(map[string]any{
				"length": len(cleaned),
			}).
			Mark(ierr.ErrMalformedIdentifier)
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ierr.NewError("identifier contains non-digit characters").
				WithHint("Tax identifier may only contain digits and separators").
				Mark(ierr.ErrMalformedIdentifier)
		}
	}

	return cleaned, nil
}

// ChecksumValid computes the weighted checksum over a normalized identifier.
// The weighted sum of the payload modulo 11 must equal the check digit; a
// remainder of 10 is invalid outright, it never wraps to 0. The function is
// pure: the same input always yields the same verdict.
func ChecksumValid(normalized string) bool {
	if len(normalized) != identifierLength {
		return false
	}

	sum := 0
	for i, w := range checksumWeights {
		sum += int(normalized[i]-'0') * w
	}

	remainder := sum % 11
	if remainder == 10 {
		return false
	}

	return remainder == int(normalized[identifierLength-1]-'0')
}
