// README: UK postcode district extraction.
package distance

import (
	"regexp"
	"strings"
)

var (
	// Full postcode: outward district followed by the inward code.
	fullPostcodeRe = regexp.MustCompile(`\b([A-Z]{1,2}[0-9][A-Z0-9]?)\s*[0-9][A-Z]{2}\b`)
	// District on its own, e.g. "London EC2".
	districtRe     = regexp.MustCompile(`\b([A-Z]{1,2}[0-9][A-Z0-9]?)\b`)
	bareDistrictRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?$`)
)

// extractDistrict returns the outward code of the last postcode in addr,
// preferring a full postcode over a bare district token.
func extractDistrict(addr string) string {
	upper := strings.ToUpper(addr)
	if m := fullPostcodeRe.FindAllStringSubmatch(upper, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	if m := districtRe.FindAllStringSubmatch(upper, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	return ""
}

// areaOf returns the leading letters of a district ("SW1A" -> "SW").
func areaOf(district string) string {
	for i, r := range district {
		if r >= '0' && r <= '9' {
			return district[:i]
		}
	}
	return district
}

// trimSubdistrict drops a trailing sub-district letter ("EC2V" -> "EC2").
func trimSubdistrict(district string) string {
	n := len(district)
	if n < 3 {
		return district
	}
	last := district[n-1]
	if last >= 'A' && last <= 'Z' {
		return district[:n-1]
	}
	return district
}
