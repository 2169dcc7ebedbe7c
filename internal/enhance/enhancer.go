package enhance

import (
	"context"
	"fmt"

	"github.com/reloadpress/autopost/internal/logger"
)

// DefaultIllustrationTarget is the minimum inline image count the
// enhancer guarantees.
const DefaultIllustrationTarget = 3

// Config tunes the enhancer. Zero values take defaults.
type Config struct {
	// IllustrationTarget is the guaranteed minimum number of inline
	// images per article.
	IllustrationTarget int
}

// Enhancer applies the fixed stage sequence to an article body. It is a
// total function over its input: a stage that fails on malformed input
// degrades to that stage's input, never aborting the pipeline and never
// returning less content than it was given.
type Enhancer struct {
	resolver ImageResolver
	target   int
	logger   logger.Logger
}

// New creates an Enhancer. resolver may be nil; the illustration stage
// then leaves image counts untouched.
func New(resolver ImageResolver, cfg Config, log logger.Logger) *Enhancer {
	target := cfg.IllustrationTarget
	if target == 0 {
		target = DefaultIllustrationTarget
	}
	return &Enhancer{resolver: resolver, target: target, logger: log}
}

// Enhance runs every stage over body and returns the enhanced HTML.
// Enhance(Enhance(b)) == Enhance(b): each stage is guarded by a marker
// or a structural check and skips itself on re-entry.
func (e *Enhancer) Enhance(ctx context.Context, body, topic, category string) string {
	stages := []struct {
		name string
		fn   func(string) (string, error)
	}{
		{"artifact-cleanup", cleanArtifacts},
		{"pricing-redaction", redactPricing},
		{"table-reflow", reflowTables},
		{"illustrations", func(h string) (string, error) {
			return ensureIllustrations(ctx, h, topic, e.resolver, e.target)
		}},
		{"checklist", ensureChecklist},
		{"finalize", finalize},
	}

	out := body
	for _, stage := range stages {
		next, err := e.runStage(stage.name, stage.fn, out)
		if err != nil {
			e.logger.Warn("enhancement stage failed, keeping pre-stage content",
				logger.String("stage", stage.name),
				logger.String("topic", topic),
				logger.String("category", category),
				logger.Error(err),
			)
			continue
		}
		out = next
	}
	return out
}

// runStage isolates a stage: parse panics and errors surface as stage
// errors, and the caller falls back to the stage's input.
func (e *Enhancer) runStage(name string, fn func(string) (string, error), in string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("stage %s panicked: %v", name, r)
		}
	}()
	return fn(in)
}
