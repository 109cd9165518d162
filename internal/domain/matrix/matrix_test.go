package matrix_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	ctx := context.Background()

	Convey("Given responses with a duplicate and a gap", t, func() {
		responses := []model.Response{
			{PersonID: "p2", ItemID: "i2", Category: 4},
			{PersonID: "p1", ItemID: "i1", Category: 2},
			{PersonID: "p1", ItemID: "i2", Category: 5},
			{PersonID: "p1", ItemID: "i1", Category: 5},
		}

		m, warnings, err := matrix.NewBuilder().Build(ctx, responses)

		Convey("Then ids are sorted", func() {
			So(err, ShouldBeNil)
			So(m.Persons(), ShouldResemble, []string{"p1", "p2"})
			So(m.Items(), ShouldResemble, []string{"i1", "i2"})
		})

		Convey("Then the first value wins and a warning is returned", func() {
			So(m.At(0, 0), ShouldEqual, 2)
			So(len(warnings), ShouldEqual, 1)
			So(warnings[0].Code, ShouldEqual, model.WarnDuplicateResponse)
		})

		Convey("Then missing cells hold the column mean and are unobserved", func() {
			So(m.At(1, 0), ShouldEqual, 2)
			So(m.Observed(1, 0), ShouldBeFalse)
			So(m.Observed(1, 1), ShouldBeTrue)
			So(m.ObservedCount(0), ShouldEqual, 2)
			So(m.ObservedCount(1), ShouldEqual, 1)
		})
	})

	Convey("Given only out-of-scale responses", t, func() {
		_, warnings, err := matrix.NewBuilder().Build(ctx, []model.Response{{PersonID: "p", ItemID: "i", Category: 9}})

		Convey("Then the build fails with ErrEmptyInput", func() {
			So(errors.Is(err, matrix.ErrEmptyInput), ShouldBeTrue)
			So(warnings[0].Code, ShouldEqual, model.WarnOutOfScale)
		})
	})

	Convey("Given an item whose only answer is out of scale", t, func() {
		m, _, err := matrix.NewBuilder(matrix.WithScale(1, 5)).Build(ctx, []model.Response{
			{PersonID: "p", ItemID: "i1", Category: 3},
			{PersonID: "p", ItemID: "i2", Category: 0},
		})

		Convey("Then that item is excluded", func() {
			So(err, ShouldBeNil)
			So(m.Items(), ShouldResemble, []string{"i1"})
		})
	})

	Convey("Given no responses", t, func() {
		_, _, err := matrix.NewBuilder().Build(ctx, nil)
		So(errors.Is(err, matrix.ErrEmptyInput), ShouldBeTrue)
	})
}

func TestFromDense(t *testing.T) {
	Convey("Given explicit values", t, func() {
		m, err := matrix.FromDense([]string{"a", "b"}, []string{"x"}, [][]float64{{1}, {2}}, nil)
		So(err, ShouldBeNil)

		Convey("Then every cell is observed", func() {
			So(m.Observed(0, 0), ShouldBeTrue)
			So(m.Rows(), ShouldEqual, 2)
			So(m.Cols(), ShouldEqual, 1)
		})

		Convey("Then WithValues keeps the shape", func() {
			n, err := m.WithValues([][]float64{{5}, {6}})
			So(err, ShouldBeNil)
			So(n.At(1, 0), ShouldEqual, 6)
			So(m.At(1, 0), ShouldEqual, 2)
		})

		Convey("Then a wrong shape is rejected", func() {
			_, err := m.WithValues([][]float64{{5}})
			So(errors.Is(err, matrix.ErrShape), ShouldBeTrue)
		})
	})

	Convey("Given duplicate ids", t, func() {
		_, err := matrix.FromDense([]string{"a", "a"}, []string{"x"}, [][]float64{{1}, {2}}, nil)
		So(errors.Is(err, matrix.ErrShape), ShouldBeTrue)
	})
}
