package exclusion_test

import (
	"context"
	"testing"

	"github.com/okian/dailyboss/internal/domain/exclusion"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExclusionSet(t *testing.T) {
	Convey("Given a new exclusion set", t, func() {
		ctx := context.Background()
		s := exclusion.New()

		Convey("Then it starts empty", func() {
			So(s.Size(), ShouldEqual, 0)
			So(s.Names(), ShouldBeEmpty)
			So(s.Contains("Oceanid"), ShouldBeFalse)
		})

		Convey("When a name is recorded", func() {
			seen := s.SeenAndRecord(ctx, "Oceanid")

			Convey("Then it is new and now excluded", func() {
				So(seen, ShouldBeFalse)
				So(s.Contains("Oceanid"), ShouldBeTrue)
				So(s.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports it as seen", func() {
				So(s.SeenAndRecord(ctx, "Oceanid"), ShouldBeTrue)
				So(s.Size(), ShouldEqual, 1)
			})
		})

		Convey("When several names are recorded", func() {
			for _, name := range []string{"c", "a", "b", "a"} {
				s.SeenAndRecord(ctx, name)
			}

			Convey("Then Names keeps insertion order without duplicates", func() {
				So(s.Names(), ShouldResemble, []string{"c", "a", "b"})
			})

			Convey("And Names returns a copy", func() {
				names := s.Names()
				names[0] = "z"
				So(s.Contains("z"), ShouldBeFalse)
			})
		})
	})
}

func TestExclusionOptions(t *testing.T) {
	Convey("Given exclusion options", t, func() {
		Convey("When seeding names", func() {
			s := exclusion.New(exclusion.WithCapacity(2), exclusion.WithNames("a", "b", "a"))

			Convey("Then seeded names are excluded once each", func() {
				So(s.Size(), ShouldEqual, 2)
				So(s.Contains("a"), ShouldBeTrue)
				So(s.Contains("b"), ShouldBeTrue)
			})
		})

		Convey("When capacity is non-positive", func() {
			So(func() { exclusion.New(exclusion.WithCapacity(-1)) }, ShouldNotPanic)
		})
	})
}
