package autoapply

import (
	"strings"
	"time"
	"unicode"
)

// Confidence assignments per match tier. Only a literal hit on the
// attribute's own name earns full confidence; a dictionary alias ("full
// name" for the "name" attribute) is a synonym and scores just below it.
const (
	exactConfidence   = 1.0
	aliasConfidence   = 0.95
	defaultConfidence = 0.3

	// Fuzzy matches score fuzzyFloor + fuzzySpan*similarity, which keeps
	// them strictly inside (0.5, 0.9] and below alias matches.
	fuzzyFloor = 0.5
	fuzzySpan  = 0.4

	// minSimilarity is the token-overlap ratio below which a candidate
	// attribute is not considered a match at all.
	minSimilarity = 0.5
)

// kindDefaults lists the only values safe to volunteer without profile data.
// Consent-style checkboxes are ticked; nothing else is guessable.
var kindDefaults = map[FieldKind]string{
	FieldBoolean: "true",
}

// MapFields generates one FieldResponse per form field, order preserved.
// Missing profile data is never an error: a field nothing matches comes back
// unresolved with confidence 0 and a nil value.
func MapFields(fields []FormField, profile *Profile) []FieldResponse {
	responses := make([]FieldResponse, 0, len(fields))
	for _, field := range fields {
		responses = append(responses, mapField(field, profile))
	}
	return responses
}

func mapField(field FormField, profile *Profile) FieldResponse {
	resp := FieldResponse{Field: field, Source: SourceUnresolved}

	if best := bestCandidate(field, profile); best != nil {
		value := best.value
		resp.GeneratedValue = &value
		resp.Confidence = best.confidence
		resp.Source = SourceProfile
		return resp
	}

	// Type-compatible defaults apply to optional fields only; a required
	// field must come from real profile data or stay unresolved.
	if !field.Required {
		if value, ok := kindDefaults[field.Kind]; ok {
			v := value
			resp.GeneratedValue = &v
			resp.Confidence = defaultConfidence
			resp.Source = SourceDefault
			return resp
		}
	}

	return resp
}

type candidate struct {
	value      string
	confidence float64
	updatedAt  time.Time
}

// bestCandidate scans the profile for the attribute that fits the field
// best. Equal confidence goes to the most recently updated attribute.
func bestCandidate(field FormField, profile *Profile) *candidate {
	if profile == nil {
		return nil
	}
	// File inputs carry uploads, not text; profile attributes cannot fill them.
	if field.Kind == FieldFile {
		return nil
	}

	fieldKey := normalizeKey(field.Name)
	labelKey := normalizeKey(field.Label)

	var best *candidate
	for _, attr := range profile.Attributes {
		if attr.Value == "" {
			continue
		}
		conf := matchConfidence(fieldKey, labelKey, attr.Name)
		if conf == 0 {
			continue
		}
		if best == nil || conf > best.confidence ||
			(conf == best.confidence && attr.UpdatedAt.After(best.updatedAt)) {
			best = &candidate{value: attr.Value, confidence: conf, updatedAt: attr.UpdatedAt}
		}
	}
	return best
}

// matchConfidence scores how well an attribute fits a field: exactConfidence
// for the attribute's own normalized name, aliasConfidence for an exact hit
// on a dictionary alias, (fuzzyFloor, fuzzyFloor+fuzzySpan] for token
// overlap, 0 for no match.
func matchConfidence(fieldKey, labelKey, attrName string) float64 {
	own := normalizeKey(attrName)
	if own != "" && (fieldKey == own || labelKey == own) {
		return exactConfidence
	}
	for _, alias := range attributeAliases[attrName] {
		if fieldKey == alias || labelKey == alias {
			return aliasConfidence
		}
	}

	var maxSim float64
	for _, alias := range aliasesFor(attrName) {
		if sim := tokenSimilarity(fieldKey, alias); sim > maxSim {
			maxSim = sim
		}
		if sim := tokenSimilarity(labelKey, alias); sim > maxSim {
			maxSim = sim
		}
	}
	if maxSim < minSimilarity {
		return 0
	}

	// Equality is handled above, so similarity 1.0 here means reordered or
	// differently separated tokens; fuzzy stays strictly below alias.
	return fuzzyFloor + fuzzySpan*maxSim
}

// tokenSimilarity is the Jaccard overlap of the two keys' token sets.
func tokenSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for tok := range setA {
		if setB[tok] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}

	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func tokenSet(key string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(key) {
		set[tok] = true
	}
	return set
}

// normalizeKey lowercases a field name or label and collapses everything
// that is not a letter or digit into single spaces, so "First_Name*" and
// "first name" compare equal.
func normalizeKey(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
