// Package formauto - extract.go derives a form schema from posting HTML.
package formauto

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/remoteboard/remoteboard/internal/autoapply"
)

// captchaSelectors match the widgets of the common captcha providers. The
// widget often sits outside the form element, so detection is page-wide.
var captchaSelectors = []string{
	"iframe[src*='recaptcha']",
	".g-recaptcha",
	"iframe[src*='hcaptcha']",
	".h-captcha",
	".cf-turnstile",
	"[data-captcha]",
}

// wizardSelectors match step or progress indicators of multi-step flows.
var wizardSelectors = []string{
	"[data-step]",
	".application-step",
	".step-indicator",
	".progress-steps",
	".wizard-steps",
	"[data-automation-id='progressBar']",
}

// ExtractSchema parses posting page HTML and derives the application form
// schema: detected fields plus the submission mechanism. A page without a
// recognizable form yields an empty, non-drivable schema rather than an
// error.
func ExtractSchema(html string, platform Platform) (*autoapply.FormSchema, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	schema := &autoapply.FormSchema{
		Mechanism: autoapply.Mechanism{
			Kind:    autoapply.MechanismUnknown,
			Captcha: doc.Find(strings.Join(captchaSelectors, ", ")).Length() > 0,
		},
	}

	form := findForm(doc, platform)
	if form == nil {
		return schema, nil
	}

	// A password input means this is an account login, not an application.
	if form.Find("input[type='password']").Length() > 0 {
		schema.Mechanism.Kind = autoapply.MechanismLoginWalled
		return schema, nil
	}

	schema.Fields = extractFields(doc, form)

	switch {
	case isWizard(doc, form):
		schema.Mechanism.Kind = autoapply.MechanismWizard
	case hasSubmitControl(form):
		schema.Mechanism.Kind = autoapply.MechanismSinglePage
	}

	return schema, nil
}

// findForm locates the application form using platform selectors, most
// specific first. The bare "form" fallback picks the form with the most
// fillable fields, since postings often carry a search or newsletter form
// too.
func findForm(doc *goquery.Document, platform Platform) *goquery.Selection {
	for _, selector := range PlatformFormSelectors(platform) {
		selection := doc.Find(selector)
		if selection.Length() == 0 {
			continue
		}
		if selector != "form" || selection.Length() == 1 {
			return selection.First()
		}
		return richestForm(selection)
	}
	return nil
}

func richestForm(forms *goquery.Selection) *goquery.Selection {
	var best *goquery.Selection
	bestCount := -1
	forms.Each(func(_ int, form *goquery.Selection) {
		count := form.Find("input:not([type='hidden']), select, textarea").Length()
		if count > bestCount {
			best = form
			bestCount = count
		}
	})
	return best
}

func extractFields(doc *goquery.Document, form *goquery.Selection) []autoapply.FormField {
	var fields []autoapply.FormField
	seen := make(map[string]int)

	form.Find("input, select, textarea").Each(func(_ int, sel *goquery.Selection) {
		field, ok := fieldFrom(doc, sel)
		if !ok {
			return
		}
		// Radio groups and checkbox groups repeat the name attribute;
		// they collapse into one field.
		if i, dup := seen[field.Name]; dup {
			if field.Required {
				fields[i].Required = true
			}
			if fields[i].Label == "" {
				fields[i].Label = field.Label
			}
			return
		}
		seen[field.Name] = len(fields)
		fields = append(fields, field)
	})

	return fields
}

func fieldFrom(doc *goquery.Document, sel *goquery.Selection) (autoapply.FormField, bool) {
	tag := goquery.NodeName(sel)
	inputType := strings.ToLower(sel.AttrOr("type", ""))

	if tag == "input" {
		switch inputType {
		case "hidden", "submit", "button", "reset", "image", "password":
			return autoapply.FormField{}, false
		}
	}

	name := sel.AttrOr("name", "")
	if name == "" {
		name = sel.AttrOr("id", "")
	}
	if name == "" {
		return autoapply.FormField{}, false
	}

	rawLabel := fieldLabel(doc, sel)

	return autoapply.FormField{
		Name:     name,
		Label:    cleanLabel(rawLabel),
		Required: isRequired(sel, rawLabel),
		Kind:     fieldKind(tag, inputType),
	}, true
}

// fieldLabel finds the human-readable label for a control: an explicit
// label[for], a wrapping label, an aria-label or a placeholder, in that
// order.
func fieldLabel(doc *goquery.Document, sel *goquery.Selection) string {
	if id := sel.AttrOr("id", ""); id != "" {
		if label := doc.Find(`label[for="` + id + `"]`); label.Length() > 0 {
			return label.First().Text()
		}
	}

	if wrapping := sel.Closest("label"); wrapping.Length() > 0 {
		return wrapping.Text()
	}

	if aria := sel.AttrOr("aria-label", ""); aria != "" {
		return aria
	}

	return sel.AttrOr("placeholder", "")
}

func isRequired(sel *goquery.Selection, rawLabel string) bool {
	if _, ok := sel.Attr("required"); ok {
		return true
	}
	if sel.AttrOr("aria-required", "") == "true" {
		return true
	}
	// Boards commonly mark required fields only in the label text.
	return strings.Contains(rawLabel, "*")
}

func fieldKind(tag, inputType string) autoapply.FieldKind {
	switch tag {
	case "select":
		return autoapply.FieldSelect
	case "textarea":
		return autoapply.FieldText
	}

	switch inputType {
	case "file":
		return autoapply.FieldFile
	case "checkbox":
		return autoapply.FieldBoolean
	case "radio":
		return autoapply.FieldSelect
	case "date":
		return autoapply.FieldDate
	default:
		return autoapply.FieldText
	}
}

// isWizard reports whether the form is part of a multi-step flow: either
// step indicators are present, or the form offers only a "next" control
// instead of a submit.
func isWizard(doc *goquery.Document, form *goquery.Selection) bool {
	if doc.Find(strings.Join(wizardSelectors, ", ")).Length() > 0 {
		return true
	}
	if hasSubmitControl(form) {
		return false
	}
	next := false
	form.Find("button, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(sel.Text()), "next") {
			next = true
			return false
		}
		return true
	})
	return next
}

func hasSubmitControl(form *goquery.Selection) bool {
	return form.Find("button[type='submit'], input[type='submit'], button:not([type])").Length() > 0
}

// cleanLabel collapses whitespace and strips required markers from a label.
func cleanLabel(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	label = strings.TrimRight(label, " *:")
	return strings.TrimSpace(label)
}
