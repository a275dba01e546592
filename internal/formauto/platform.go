// Package formauto - platform.go provides platform detection and
// platform-specific form selectors.
package formauto

import (
	"net/url"
	"strings"

	"github.com/remoteboard/remoteboard/internal/autoapply"
)

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformAshby is the Ashby ATS platform
	PlatformAshby Platform = "ashby"
	// PlatformLinkedIn is LinkedIn's own job board
	PlatformLinkedIn Platform = "linkedin"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	// Greenhouse patterns
	if strings.Contains(host, "greenhouse.io") ||
		strings.Contains(host, "boards.greenhouse.io") {
		return PlatformGreenhouse
	}

	// Lever patterns
	if strings.Contains(host, "lever.co") ||
		strings.Contains(host, "jobs.lever.co") {
		return PlatformLever
	}

	// Workday patterns
	if strings.Contains(host, "workday.com") ||
		strings.Contains(host, "myworkdayjobs.com") {
		return PlatformWorkday
	}

	// Ashby patterns
	if strings.Contains(host, "ashbyhq.com") {
		return PlatformAshby
	}

	// LinkedIn patterns
	if strings.Contains(host, "linkedin.com") {
		return PlatformLinkedIn
	}

	return PlatformUnknown
}

// PlatformFormSelectors returns selectors for locating the application form
// on a specific platform, most specific first.
func PlatformFormSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{
			"#application-form",
			"#application_form",
			"form#application",
			".application--form form",
			"form",
		}
	case PlatformLever:
		return []string{
			".application-form form",
			"#application-form",
			"form.application-form",
			"form[action*='apply']",
			"form",
		}
	case PlatformWorkday:
		return []string{
			"[data-automation-id='jobApplication'] form",
			"[data-automation-id='applyFlowPage'] form",
			"form",
		}
	case PlatformAshby:
		return []string{
			"._form_application form",
			"form[class*='application']",
			"form",
		}
	default:
		return GenericFormSelectors()
	}
}

// GenericFormSelectors returns form selectors for unrecognized boards.
func GenericFormSelectors() []string {
	return []string{
		"#application-form",
		"#application_form",
		"form[id*='application']",
		"form[class*='application']",
		"form[id*='apply']",
		"form[class*='apply']",
		"form[action*='apply']",
		"form",
	}
}

// PlatformMechanismHint returns a submission mechanism known from the
// platform alone, before any page is fetched. Ok is false when the mechanism
// has to be determined from the page.
func PlatformMechanismHint(platform Platform) (autoapply.Mechanism, bool) {
	switch platform {
	case PlatformLinkedIn:
		// Easy Apply runs behind a LinkedIn session we do not hold.
		return autoapply.Mechanism{Kind: autoapply.MechanismLoginWalled}, true
	case PlatformWorkday:
		// Workday applications are multi-step wizards without exception.
		return autoapply.Mechanism{Kind: autoapply.MechanismWizard}, true
	default:
		return autoapply.Mechanism{}, false
	}
}
