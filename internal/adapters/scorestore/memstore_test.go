package scorestore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
)

func score(entityID string, value float64) model.ConfidenceScore {
	return model.ConfidenceScore{
		EntityID:    entityID,
		Score:       value,
		Uncertainty: 0.10,
		Tier:        model.TierVerified,
		Display:     model.FormatDisplay(value, 0.10),
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty score store", t, func() {
		store := NewMemStore()

		Convey("When reading an unknown entity", func() {
			_, err := store.Get(ctx, "ghost")

			Convey("Then it reports not found", func() {
				So(err, ShouldWrap, ErrNotFound)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When storing a score with no entity id", func() {
			err := store.Put(ctx, model.ConfidenceScore{Score: 0.5})

			Convey("Then the write is rejected", func() {
				So(err, ShouldWrap, ErrEmptyEntityID)
			})
		})
	})

	Convey("Given a store with several fused scores", t, func() {
		store := NewMemStore()
		So(store.Put(ctx, score("acme corp", 0.45)), ShouldBeNil)
		So(store.Put(ctx, score("bolt gmbh", 0.25)), ShouldBeNil)
		So(store.Put(ctx, score("cetc branch", 0.45)), ShouldBeNil)
		So(store.Put(ctx, score("delta llc", 0.90)), ShouldBeNil)

		Convey("When ranking the top entries", func() {
			top, err := store.TopN(ctx, 3)

			Convey("Then order is score desc with entity id breaking ties", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 3)
				So(top[0].EntityID, ShouldEqual, "delta llc")
				So(top[1].EntityID, ShouldEqual, "acme corp")
				So(top[2].EntityID, ShouldEqual, "cetc branch")
			})
		})

		Convey("When asking for more entries than exist", func() {
			top, err := store.TopN(ctx, 100)

			Convey("Then all entries come back ranked", func() {
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 4)
			})
		})

		Convey("When asking for a non-positive limit", func() {
			_, err := store.TopN(ctx, 0)

			Convey("Then the limit is rejected", func() {
				So(err, ShouldWrap, ErrInvalidLimit)
			})
		})

		Convey("When re-scoring an entity", func() {
			So(store.Put(ctx, score("bolt gmbh", 0.95)), ShouldBeNil)
			got, err := store.Get(ctx, "bolt gmbh")

			Convey("Then the newer score replaces the old one", func() {
				So(err, ShouldBeNil)
				So(got.Score, ShouldEqual, 0.95)
				So(store.Count(ctx), ShouldEqual, 4)
			})
		})

		Convey("When taking a snapshot", func() {
			snap := store.Snapshot(ctx)

			Convey("Then every score appears exactly once, ranked", func() {
				So(snap, ShouldHaveLength, 4)
				So(snap[0].Score, ShouldBeGreaterThanOrEqualTo, snap[1].Score)
				So(snap[1].Score, ShouldBeGreaterThanOrEqualTo, snap[2].Score)
				So(snap[2].Score, ShouldBeGreaterThanOrEqualTo, snap[3].Score)
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		store := NewMemStore()

		Convey("When many goroutines store scores at once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = store.Put(ctx, score(fmt.Sprintf("entity-%02d", i), float64(i)/100))
				}(i)
			}
			wg.Wait()

			Convey("Then every write lands", func() {
				So(store.Count(ctx), ShouldEqual, 50)
				top, err := store.TopN(ctx, 1)
				So(err, ShouldBeNil)
				So(top[0].EntityID, ShouldEqual, "entity-49")
			})
		})
	})
}
