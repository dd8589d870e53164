package smoothing_test

import (
	"testing"

	"github.com/okian/waterline/internal/domain/smoothing"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMovingAverage(t *testing.T) {
	Convey("Given a trailing moving-average filter", t, func() {
		Convey("When the input is empty", func() {
			out := smoothing.MovingAverage(nil, 10)

			Convey("Then the output is empty", func() {
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When the series is shorter than the window", func() {
			out := smoothing.MovingAverage([]float64{10, 20, 30}, 10)

			Convey("Then each element averages the available prefix", func() {
				So(len(out), ShouldEqual, 3)
				So(out[0], ShouldEqual, 10)
				So(out[1], ShouldEqual, 15)
				So(out[2], ShouldEqual, 20)
			})
		})

		Convey("When the series is longer than the window", func() {
			values := []float64{1, 2, 3, 4, 5, 6}
			out := smoothing.MovingAverage(values, 3)

			Convey("Then elements past the window average exactly window values", func() {
				So(out[2], ShouldEqual, 2) // (1+2+3)/3
				So(out[3], ShouldEqual, 3) // (2+3+4)/3
				So(out[5], ShouldEqual, 5) // (4+5+6)/3
			})

			Convey("And the output has the same length as the input", func() {
				So(len(out), ShouldEqual, len(values))
			})
		})

		Convey("When the series is constant", func() {
			out := smoothing.MovingAverage([]float64{100, 100, 100}, 10)

			Convey("Then the filter is the identity", func() {
				So(out[0], ShouldEqual, 100)
				So(out[1], ShouldEqual, 100)
				So(out[2], ShouldEqual, 100)
			})
		})

		Convey("When the window is not positive", func() {
			out := smoothing.MovingAverage([]float64{5, 7, 9}, 0)

			Convey("Then each element is its own average", func() {
				So(out[0], ShouldEqual, 5)
				So(out[1], ShouldEqual, 7)
				So(out[2], ShouldEqual, 9)
			})
		})
	})
}
