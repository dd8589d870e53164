package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/waterline/internal/adapters/repository"
	"github.com/okian/waterline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestStore(t *testing.T, ctx context.Context) *repository.SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "waterline-test.db")
	store, err := repository.NewSQLiteStore(ctx, path, repository.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRawReadings(t *testing.T) {
	Convey("Given an open sqlite store", t, func() {
		ctx := context.Background()
		store := openTestStore(t, ctx)
		day := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

		Convey("When appending raw readings out of insertion order", func() {
			So(store.AppendRaw(ctx, "trough1", model.Reading{Timestamp: day.Add(10 * time.Minute), RawVolume: 950}), ShouldBeNil)
			So(store.AppendRaw(ctx, "trough1", model.Reading{Timestamp: day, RawVolume: 1000}), ShouldBeNil)
			So(store.AppendRaw(ctx, "trough2", model.Reading{Timestamp: day, RawVolume: 500}), ShouldBeNil)

			Convey("Then RawForDate returns the channel's readings ordered by timestamp", func() {
				readings, err := store.RawForDate(ctx, "trough1", day)
				So(err, ShouldBeNil)
				So(len(readings), ShouldEqual, 2)
				So(readings[0].RawVolume, ShouldEqual, 1000)
				So(readings[1].RawVolume, ShouldEqual, 950)
			})

			Convey("And other dates come back empty", func() {
				readings, err := store.RawForDate(ctx, "trough1", day.AddDate(0, 0, 1))
				So(err, ShouldBeNil)
				So(readings, ShouldBeEmpty)
			})
		})
	})
}

func TestSQLiteStoreDerivedQueries(t *testing.T) {
	Convey("Given derived points persisted for one day", t, func() {
		ctx := context.Background()
		store := openTestStore(t, ctx)
		day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

		points := []model.DerivedPoint{
			{Timestamp: day.Add(8 * time.Hour), RawVolume: 2000, FilteredVolume: 2000, CumulativeConsumption: 0},
			{Timestamp: day.Add(9 * time.Hour), RawVolume: 1800, FilteredVolume: 1800, CumulativeConsumption: 200},
			{Timestamp: day.Add(10 * time.Hour), RawVolume: 1500, FilteredVolume: 1500, CumulativeConsumption: 500},
		}
		for _, p := range points {
			So(store.AppendDerived(ctx, "trough1", p), ShouldBeNil)
		}

		Convey("When querying at or after the last point", func() {
			v, ok, err := store.LastDerivedAtOrBefore(ctx, "trough1", day, day.Add(12*time.Hour))

			Convey("Then the last cumulative value is returned", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 500)
			})
		})

		Convey("When querying between points", func() {
			v, ok, err := store.LastDerivedAtOrBefore(ctx, "trough1", day, day.Add(9*time.Hour+30*time.Minute))

			Convey("Then the preceding value is returned", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 200)
			})
		})

		Convey("When querying before the first point", func() {
			_, ok, err := store.LastDerivedAtOrBefore(ctx, "trough1", day, day.Add(7*time.Hour))

			Convey("Then no record is found", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When querying an unknown channel", func() {
			_, ok, err := store.LastDerivedAtOrBefore(ctx, "trough9", day, day.Add(12*time.Hour))

			Convey("Then no record is found", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSQLiteStoreArchive(t *testing.T) {
	Convey("Given an open sqlite store", t, func() {
		ctx := context.Background()
		store := openTestStore(t, ctx)

		Convey("When archiving a prediction", func() {
			p := model.Prediction{
				ID:        uuid.NewString(),
				Timestamp: time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC),
				Features: model.FeatureVector{
					ChannelID:          "trough1",
					Hour:               10,
					CumulativeML:       300,
					IntervalML:         180,
					BodyWeightKG:       450,
					BodyTempC:          39.5,
					AmbientTempC:       31,
					TemperatureGap:     8.5,
					ConsumptionPercent: 0.066,
					FeedKG:             12,
				},
				Label: model.PossiblyIll,
			}

			err := store.ArchivePrediction(ctx, p)

			Convey("Then the append succeeds", func() {
				So(err, ShouldBeNil)
			})

			Convey("And archiving a second prediction with a fresh id succeeds too", func() {
				p.ID = uuid.NewString()
				So(store.ArchivePrediction(ctx, p), ShouldBeNil)
			})
		})
	})
}
