// Package formauto - driver.go fills and submits application forms in a
// headless browser.
package formauto

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/remoteboard/remoteboard/internal/autoapply"
	"github.com/remoteboard/remoteboard/internal/config"
)

// confirmationSelectors match elements boards render after accepting a
// submission.
var confirmationSelectors = []string{
	"#application_confirmation",
	".application-confirmation",
	".application-success",
	"[data-qa='application-success']",
	".posting-applied",
	"#thank-you",
	".thank-you-message",
}

// rejectionSelectors match inline error banners after a rejected submission.
var rejectionSelectors = []string{
	".application-error",
	".submission-error",
	".error-banner",
	".form-error",
	"[role='alert']",
}

// setFieldScript sets one form control by name and fires the events
// client-side validation listens for. Checkbox and radio controls toggle
// instead of taking a text value.
const setFieldScript = `(function(name, value) {
	var el = document.querySelector('[name="' + name + '"]');
	if (!el) { return "missing"; }
	var type = (el.getAttribute("type") || "").toLowerCase();
	if (type === "checkbox") {
		el.checked = value === "true";
	} else if (type === "radio") {
		var option = document.querySelector('[name="' + name + '"][value="' + value + '"]');
		(option || el).checked = true;
		el = option || el;
	} else {
		el.value = value;
	}
	el.dispatchEvent(new Event("input", { bubbles: true }));
	el.dispatchEvent(new Event("change", { bubbles: true }));
	return el.tagName.toLowerCase();
})(%q, %q)`

// Driver submits application forms. One Submit call is one full browser
// session: navigate, fill, submit, read the outcome.
type Driver struct {
	timeout  time.Duration
	headless bool
}

// NewDriver creates a submit driver from the automation configuration.
func NewDriver(cfg *config.AutomationConfig) *Driver {
	if cfg == nil {
		cfg = &config.AutomationConfig{
			SubmitTimeout: 3 * DefaultTimeout,
			Headless:      true,
		}
	}
	return &Driver{
		timeout:  cfg.SubmitTimeout,
		headless: cfg.Headless,
	}
}

// Submit navigates to the posting, fills the form with the generated values
// and submits it. The returned outcome reports whether the board confirmed
// the application; an error means the board never gave a usable response.
// Requires Chrome/Chromium to be installed on the system.
func (d *Driver) Submit(ctx context.Context, jobURL string, values map[string]string) (*autoapply.SubmitOutcome, error) {
	log.Printf("[driver] submitting %s with %d values (timeout %s)", jobURL, len(values), d.timeout)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", d.headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, d.timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(jobURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2 * time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners - don't fail if not found
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
	}
	for name, value := range values {
		actions = append(actions, fillAction(jobURL, name, value))
	}
	var outcomeHTML string
	actions = append(actions,
		chromedp.Click(`button[type="submit"], input[type="submit"]`, chromedp.NodeVisible),
		// Wait for the board to process and render the outcome
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &outcomeHTML),
	)

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, &Error{
			URL:       jobURL,
			Message:   "browser submission failed",
			Retryable: true,
			Cause:     err,
		}
	}

	outcome := parseOutcome(outcomeHTML)
	log.Printf("[driver] %s confirmed=%t ref=%q reason=%q", jobURL, outcome.Confirmed, outcome.ExternalRef, outcome.Reason)
	return outcome, nil
}

// fillAction sets a single field. A field that disappeared since analysis is
// logged and skipped; the board's own validation decides whether that
// matters.
func fillAction(jobURL, name, value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var tag string
		script := fmt.Sprintf(setFieldScript, name, value)
		if err := chromedp.Evaluate(script, &tag).Do(ctx); err != nil {
			return fmt.Errorf("failed to set field %q: %w", name, err)
		}
		if tag == "missing" {
			log.Printf("[driver] %s field %q not found on page, skipping", jobURL, name)
		}
		return nil
	})
}

// parseOutcome reads the post-submit page and decides whether the board
// accepted the application.
func parseOutcome(html string) *autoapply.SubmitOutcome {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &autoapply.SubmitOutcome{Reason: "the submission outcome page could not be read"}
	}

	if confirmation := doc.Find(strings.Join(confirmationSelectors, ", ")); confirmation.Length() > 0 {
		outcome := &autoapply.SubmitOutcome{Confirmed: true}
		if ref, ok := confirmation.First().Attr("data-application-id"); ok {
			outcome.ExternalRef = ref
		} else {
			outcome.ExternalRef = doc.Find("[data-application-id]").AttrOr("data-application-id", "")
		}
		return outcome
	}

	if rejection := doc.Find(strings.Join(rejectionSelectors, ", ")); rejection.Length() > 0 {
		reason := strings.Join(strings.Fields(rejection.First().Text()), " ")
		if reason == "" {
			reason = "the application form rejected the submission"
		}
		return &autoapply.SubmitOutcome{Reason: reason}
	}

	return &autoapply.SubmitOutcome{Reason: "no confirmation was shown after submitting"}
}
