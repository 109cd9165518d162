package model_test

import (
	"testing"

	"github.com/okian/victoria/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestItemConstructMap(t *testing.T) {
	Convey("Given an item map with two constructs", t, func() {
		m := model.NewItemConstructMap([]model.ItemMapping{
			{ItemID: "q3", Construct: "RT"},
			{ItemID: "q1", Construct: "PS"},
			{ItemID: "q2", Construct: "RT", Reverse: true},
			{ItemID: "q3", Construct: "PS"},
			{ItemID: "", Construct: "PS"},
		}, model.WithConstructNames(map[string]string{"PS": "Solving"}), model.WithReverseItems("q1"))

		Convey("Then constructs keep declaration order", func() {
			So(m.Constructs(), ShouldResemble, []string{"RT", "PS"})
			So(m.Items("RT"), ShouldResemble, []string{"q3", "q2"})
		})

		Convey("Then the first mapping of an item wins", func() {
			c, ok := m.Construct("q3")
			So(ok, ShouldBeTrue)
			So(c, ShouldEqual, "RT")
			So(m.Len(), ShouldEqual, 3)
		})

		Convey("Then reverse items come from both mappings and options", func() {
			So(m.IsReverse("q2"), ShouldBeTrue)
			So(m.IsReverse("q3"), ShouldBeFalse)
			So(m.ReverseItems(), ShouldResemble, []string{"q1", "q2"})
		})

		Convey("Then names resolve through overrides and the catalogue", func() {
			So(m.ConstructName("PS"), ShouldEqual, "Solving")
			So(m.ConstructName("RT"), ShouldEqual, "Risk Taking")
			So(m.ConstructName("ZZ"), ShouldEqual, "ZZ")
		})
	})

	Convey("Given a nil map", t, func() {
		var m *model.ItemConstructMap

		Convey("Then lookups are safe", func() {
			_, ok := m.Construct("x")
			So(ok, ShouldBeFalse)
			So(m.Len(), ShouldEqual, 0)
			So(m.Constructs(), ShouldBeEmpty)
			So(m.IsReverse("x"), ShouldBeFalse)
		})
	})
}

func TestRaschParametersEstimates(t *testing.T) {
	Convey("Given calibrated parameters", t, func() {
		p := model.RaschParameters{
			PersonAbilities:  map[string]float64{"b": 0.2, "a": -0.1},
			ItemDifficulties: map[string]float64{"i1": 0.5},
		}

		Convey("Then estimates are sorted and carry placeholders", func() {
			persons := p.Persons()
			So(len(persons), ShouldEqual, 2)
			So(persons[0].ID, ShouldEqual, "a")
			So(persons[0].SE, ShouldEqual, model.PlaceholderSE)
			So(persons[1].Infit, ShouldEqual, model.PlaceholderInfit)
			So(p.Items()[0].Outfit, ShouldEqual, model.PlaceholderOutfit)
		})
	})
}

func TestProfileFeatures(t *testing.T) {
	Convey("Given a profile without construct scores", t, func() {
		p := model.PersonProfile{PersonID: "p1", OverallScore: 3.5}
		So(p.Features(), ShouldResemble, []float64{3.5})
	})

	Convey("Given a profile with construct scores", t, func() {
		p := model.PersonProfile{ConstructScores: []model.ConstructScore{{Score: 1}, {Score: 2}}}
		So(p.Features(), ShouldResemble, []float64{1, 2})
	})
}

func TestCatalogue(t *testing.T) {
	Convey("Every catalogue code has a name", t, func() {
		codes := model.CatalogueCodes()
		So(len(codes), ShouldEqual, 18)
		for _, c := range codes {
			So(model.ConstructName(c), ShouldNotEqual, c)
		}
	})
}

func TestDefaultItemMap(t *testing.T) {
	Convey("Given the built-in item bank", t, func() {
		m := model.DefaultItemMap()

		Convey("Then catalogue items resolve to their constructs", func() {
			c, ok := m.Construct("EnergizedByPotential")
			So(ok, ShouldBeTrue)
			So(c, ShouldEqual, "RT")
			c, _ = m.Construct("WillingCompromise")
			So(c, ShouldEqual, "N")
			So(m.Len(), ShouldEqual, 147)
		})

		Convey("Then an item listed twice keeps its last construct", func() {
			c, _ := m.Construct("Listen2Others")
			So(c, ShouldEqual, "RB")
			So(m.Items("SL"), ShouldNotContain, "Listen2Others")
		})

		Convey("Then reverse-keyed items are flagged", func() {
			So(m.IsReverse("PursuePerfection"), ShouldBeTrue)
			So(m.IsReverse("EnergizedByPotential"), ShouldBeFalse)
			So(m.ReverseItems(), ShouldHaveLength, 28)
		})

		Convey("Then every construct code is named by the catalogue", func() {
			for _, code := range m.Constructs() {
				So(m.ConstructName(code), ShouldNotEqual, code)
			}
		})
	})
}
