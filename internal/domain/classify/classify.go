// Package classify defines the contract for turning a feature vector into
// a health label.
//
// The trained model is an external collaborator; this package models it as
// an injected capability so the service can run against a deterministic
// implementation, and tests against a stub.
package classify

import (
	"context"

	"github.com/okian/waterline/internal/domain/model"
)

// Classifier computes a health label from a feature vector.
type Classifier interface {
	// Classify labels the vector, honoring ctx for cancellation.
	Classify(ctx context.Context, fv model.FeatureVector) (model.Label, error)
}

// Default rule thresholds. Cattle typically drink 6-10% of body weight a
// day; a body-ambient gap much above the normal homeothermic spread and a
// frank fever are the temperature signals.
const (
	defaultLowIntakePercent      = 4.0
	defaultCriticalIntakePercent = 2.0
	defaultFeverBodyTempC        = 39.5
	defaultWideTemperatureGap    = 12.0
)

// Option applies a configuration option to the RuleClassifier.
type Option func(*RuleClassifier)

// WithIntakeThresholds sets the low and critical daily intake percentages.
func WithIntakeThresholds(low, critical float64) Option {
	return func(c *RuleClassifier) {
		if low > 0 && critical > 0 && critical < low {
			c.lowIntakePercent = low
			c.criticalIntakePercent = critical
		}
	}
}

// WithTemperatureThresholds sets the fever body temperature and the wide
// body-ambient gap.
func WithTemperatureThresholds(fever, gap float64) Option {
	return func(c *RuleClassifier) {
		if fever > 0 {
			c.feverBodyTempC = fever
		}
		if gap > 0 {
			c.wideTemperatureGap = gap
		}
	}
}

// RuleClassifier implements Classifier with a deterministic rule table.
type RuleClassifier struct {
	lowIntakePercent      float64
	criticalIntakePercent float64
	feverBodyTempC        float64
	wideTemperatureGap    float64
}

// NewRuleClassifier creates a classifier with configuration options.
func NewRuleClassifier(opts ...Option) *RuleClassifier {
	c := &RuleClassifier{
		lowIntakePercent:      defaultLowIntakePercent,
		criticalIntakePercent: defaultCriticalIntakePercent,
		feverBodyTempC:        defaultFeverBodyTempC,
		wideTemperatureGap:    defaultWideTemperatureGap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify counts independent risk signals and maps the count to a label.
// Same vector, same label; there is no randomness.
func (c *RuleClassifier) Classify(ctx context.Context, fv model.FeatureVector) (model.Label, error) {
	if err := ctx.Err(); err != nil {
		return model.Healthy, err
	}

	risk := 0
	if fv.ConsumptionPercent < c.lowIntakePercent {
		risk++
	}
	if fv.ConsumptionPercent < c.criticalIntakePercent {
		risk++
	}
	if fv.BodyTempC >= c.feverBodyTempC {
		risk++
	}
	if fv.TemperatureGap >= c.wideTemperatureGap {
		risk++
	}

	switch {
	case risk >= 4:
		return model.Ill, nil
	case risk == 3:
		return model.LikelyIll, nil
	case risk >= 1:
		return model.PossiblyIll, nil
	default:
		return model.Healthy, nil
	}
}
