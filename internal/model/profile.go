package model

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultProfileDepth is used when no depth can be parsed from a profile name.
const DefaultProfileDepth = 400.0

var (
	reIPE      = regexp.MustCompile(`IPE\s*(\d+(?:\.\d+)?)`)
	reHE       = regexp.MustCompile(`HE[ABM]\s*(\d+(?:\.\d+)?)`)
	reUPNL     = regexp.MustCompile(`(?:UPN|UPE|L)\s*(\d+(?:\.\d+)?)`)
	reDiameter = regexp.MustCompile(`(?:Ø|DIAMETER\s*|CHS\s*)(\d+(?:\.\d+)?)`)
	reNumber   = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// ProfileDepth returns the nominal cross-section depth (mm) parsed from a
// profile name. The depth drives the shared-cut geometry of complementary
// slope pairs: a 45° cut on an IPE400 consumes 400mm of bar length.
//
// Recognized families: IPE/HEA/HEB/HEM (nominal height), UPN/UPE/L (leg),
// RHS/SHS (largest side), circular sections via Ø / CHS / DIAMETER.
// Unparseable names fall back to DefaultProfileDepth.
func ProfileDepth(profileName string) float64 {
	name := strings.TrimSpace(profileName)
	if name == "" {
		return DefaultProfileDepth
	}
	upper := strings.ToUpper(name)

	if m := reIPE.FindStringSubmatch(upper); m != nil {
		return mustFloat(m[1])
	}
	if m := reHE.FindStringSubmatch(upper); m != nil {
		return mustFloat(m[1])
	}
	if strings.Contains(upper, "RHS") || strings.Contains(upper, "SHS") {
		// Hollow sections name both sides plus wall thickness; the largest
		// number is the governing side for slope geometry.
		best := 0.0
		for _, m := range reNumber.FindAllStringSubmatch(upper, -1) {
			if v := mustFloat(m[1]); v > best {
				best = v
			}
		}
		if best > 0 {
			return best
		}
		return DefaultProfileDepth
	}
	// Circular sections: Ø219.1*3, CHS 168.3x5, DIAMETER 114
	if m := reDiameter.FindStringSubmatch(name); m != nil {
		return mustFloat(m[1])
	}
	if m := reDiameter.FindStringSubmatch(upper); m != nil {
		return mustFloat(m[1])
	}
	if m := reUPNL.FindStringSubmatch(upper); m != nil {
		return mustFloat(m[1])
	}
	// Last resort: leading dimension token of unknown families ("PROF 240x120")
	if m := reNumber.FindStringSubmatch(upper); m != nil {
		if v := mustFloat(m[1]); v > 0 {
			return v
		}
	}
	return DefaultProfileDepth
}

func mustFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultProfileDepth
	}
	return v
}

// profileTypePrefixes are element-type prefixes that upstream exports prepend
// to profile keys. Nesting merges all element types of the same profile.
var profileTypePrefixes = []string{
	"beam_", "column_", "member_",
	"IfcBeam_", "IfcColumn_", "IfcMember_",
}

// BaseProfileName strips an element-type prefix from a profile key, so
// "beam_IPE100" and "column_IPE100" group into the same nesting bucket.
func BaseProfileName(profileKey string) string {
	for _, prefix := range profileTypePrefixes {
		if strings.HasPrefix(profileKey, prefix) {
			return profileKey[len(prefix):]
		}
	}
	return profileKey
}
