// Package formauto - analyzer.go produces form schemas for the auto-apply
// engine.
package formauto

import (
	"context"
	"log"
	"time"

	"github.com/remoteboard/remoteboard/internal/autoapply"
	"github.com/remoteboard/remoteboard/internal/config"
)

// renderFunc renders a page in a browser; swapped out in tests.
type renderFunc func(ctx context.Context, url string, timeout time.Duration, headless bool) (string, error)

// Analyzer derives application form schemas from posting URLs. Plain HTTP
// fetching comes first; when that yields no recognizable form the page is
// rendered in a headless browser, since several boards only build their
// forms client-side. Extracted schemas are cached per URL so one user flow
// (analyze, preview, submit) hits the board once.
type Analyzer struct {
	opts       *Options
	navTimeout time.Duration
	headless   bool
	render     renderFunc
	cache      *schemaCache
}

// NewAnalyzer creates an analyzer from the automation configuration.
func NewAnalyzer(cfg *config.AutomationConfig) *Analyzer {
	if cfg == nil {
		cfg = &config.AutomationConfig{
			NavTimeout:    DefaultTimeout,
			SubmitTimeout: 3 * DefaultTimeout,
			Headless:      true,
			CacheTTL:      15 * time.Minute,
		}
	}

	ttl := cfg.CacheTTL
	if cfg.SkipCache {
		ttl = 0
	}

	return &Analyzer{
		opts: &Options{
			Timeout:   cfg.NavTimeout,
			UserAgent: DefaultUserAgent,
		},
		navTimeout: cfg.NavTimeout,
		headless:   cfg.Headless,
		render:     RenderPage,
		cache:      newSchemaCache(ttl),
	}
}

// FormSchema fetches the posting page and extracts its application form
// schema. Platforms whose mechanism is known up front (login-walled boards,
// wizard-only flows) are answered without any fetch.
func (a *Analyzer) FormSchema(ctx context.Context, jobURL string) (*autoapply.FormSchema, error) {
	platform := DetectPlatform(jobURL)

	if hint, ok := PlatformMechanismHint(platform); ok {
		log.Printf("[formauto] %s platform %s: mechanism %s known without fetch", jobURL, platform, hint.Kind)
		return &autoapply.FormSchema{Mechanism: hint}, nil
	}

	if schema, ok := a.cache.get(jobURL); ok {
		return schema, nil
	}

	result, err := Fetch(ctx, jobURL, a.opts)
	if err != nil {
		return nil, err
	}

	schema, err := ExtractSchema(result.HTML, platform)
	if err != nil {
		return nil, &Error{URL: jobURL, Message: "failed to parse posting page", Cause: err}
	}

	// No fields and no mechanism usually means a client-side rendered board.
	if schemaInconclusive(schema) && a.render != nil {
		rendered, renderErr := a.render(ctx, jobURL, a.navTimeout, a.headless)
		if renderErr != nil {
			log.Printf("[formauto] %s browser fallback failed, keeping static result: %v", jobURL, renderErr)
		} else if renderedSchema, extractErr := ExtractSchema(rendered, platform); extractErr == nil {
			schema = renderedSchema
		}
	}

	log.Printf("[formauto] %s platform=%s fields=%d mechanism=%s captcha=%t",
		jobURL, platform, len(schema.Fields), schema.Mechanism.Kind, schema.Mechanism.Captcha)

	a.cache.put(jobURL, schema)
	return schema, nil
}

// InvalidateSchema drops the cached schema for a URL, forcing re-extraction
// on the next request.
func (a *Analyzer) InvalidateSchema(jobURL string) {
	a.cache.invalidate(jobURL)
}

func schemaInconclusive(schema *autoapply.FormSchema) bool {
	return len(schema.Fields) == 0 &&
		schema.Mechanism.Kind == autoapply.MechanismUnknown &&
		!schema.Mechanism.Captcha
}
