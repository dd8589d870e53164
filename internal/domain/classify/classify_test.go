package classify_test

import (
	"context"
	"testing"

	"github.com/okian/waterline/internal/domain/classify"
	"github.com/okian/waterline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRuleClassifier(t *testing.T) {
	Convey("Given the default rule classifier", t, func() {
		ctx := context.Background()
		c := classify.NewRuleClassifier()

		Convey("When intake and temperatures are normal", func() {
			label, err := c.Classify(ctx, model.FeatureVector{
				ConsumptionPercent: 7.5,
				BodyTempC:          38.5,
				TemperatureGap:     7.0,
			})

			Convey("Then the animal is labeled healthy", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, model.Healthy)
			})
		})

		Convey("When intake is merely low", func() {
			label, err := c.Classify(ctx, model.FeatureVector{
				ConsumptionPercent: 3.0,
				BodyTempC:          38.5,
				TemperatureGap:     7.0,
			})

			Convey("Then the label is possibly ill", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, model.PossiblyIll)
			})
		})

		Convey("When intake is critical and the animal runs a fever", func() {
			label, err := c.Classify(ctx, model.FeatureVector{
				ConsumptionPercent: 1.0,
				BodyTempC:          40.0,
				TemperatureGap:     8.0,
			})

			Convey("Then the label is likely ill", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, model.LikelyIll)
			})
		})

		Convey("When every signal fires", func() {
			label, err := c.Classify(ctx, model.FeatureVector{
				ConsumptionPercent: 0.5,
				BodyTempC:          41.0,
				TemperatureGap:     15.0,
			})

			Convey("Then the label is ill", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, model.Ill)
			})
		})

		Convey("When classifying the same vector twice", func() {
			fv := model.FeatureVector{ConsumptionPercent: 3.0, BodyTempC: 39.8}
			l1, err1 := c.Classify(ctx, fv)
			l2, err2 := c.Classify(ctx, fv)

			Convey("Then the result is deterministic", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(l1, ShouldEqual, l2)
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := c.Classify(canceled, model.FeatureVector{})

			Convey("Then the call fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLabelString(t *testing.T) {
	Convey("Given the label enum", t, func() {
		Convey("Then each value has a stable string form", func() {
			So(model.Healthy.String(), ShouldEqual, "Healthy")
			So(model.PossiblyIll.String(), ShouldEqual, "Possibly Ill")
			So(model.LikelyIll.String(), ShouldEqual, "Likely Ill")
			So(model.Ill.String(), ShouldEqual, "Ill")
			So(model.Label(42).String(), ShouldEqual, "Unknown")
		})
	})
}
