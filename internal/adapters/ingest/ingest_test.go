package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/ingest"
	"github.com/okian/victoria/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	ctx := context.Background()
	r := ingest.NewReader()

	Convey("Given a CSV with canonical headers", t, func() {
		in := "person_id,item_id,category\np1,q1,4\np1,q2,2\np2,q1,5.0\n"
		got, warnings, err := r.ReadCSV(ctx, strings.NewReader(in))

		Convey("Then every row becomes a response", func() {
			So(err, ShouldBeNil)
			So(warnings, ShouldBeEmpty)
			So(got, ShouldResemble, []model.Response{
				{PersonID: "p1", ItemID: "q1", Category: 4},
				{PersonID: "p1", ItemID: "q2", Category: 2},
				{PersonID: "p2", ItemID: "q1", Category: 5},
			})
		})
	})

	Convey("Given alias headers in another order", t, func() {
		in := "Measure,Persons,Assessment_Items,extra\n3,a,x,ignored\n"
		got, _, err := r.ReadCSV(ctx, strings.NewReader(in))

		Convey("Then the columns are located by name", func() {
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []model.Response{{PersonID: "a", ItemID: "x", Category: 3}})
		})
	})

	Convey("Given rows that cannot be parsed", t, func() {
		in := "person,item,response\np1,q1,4\n,q2,3\np2,q1,agree\np3,q1,2.5\np4\n"
		got, warnings, err := r.ReadCSV(ctx, strings.NewReader(in))

		Convey("Then they are skipped with one warning", func() {
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(warnings, ShouldHaveLength, 1)
			So(warnings[0].Code, ShouldEqual, model.WarnUnparseableRow)
			So(warnings[0].Message, ShouldContainSubstring, "skipped 4")
		})
	})

	Convey("Given a CSV without a category column", t, func() {
		_, _, err := r.ReadCSV(ctx, strings.NewReader("person_id,item_id\np1,q1\n"))

		Convey("Then it fails naming the column", func() {
			So(errors.Is(err, ingest.ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "category")
		})
	})

	Convey("Given an empty CSV", t, func() {
		_, _, err := r.ReadCSV(ctx, strings.NewReader(""))

		Convey("Then there is no header to locate", func() {
			So(errors.Is(err, ingest.ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func TestReadFile(t *testing.T) {
	ctx := context.Background()

	Convey("Given a workbook", t, func() {
		path := filepath.Join(t.TempDir(), "responses.xlsx")
		f := excelize.NewFile()
		So(f.SetSheetRow("Sheet1", "A1", &[]any{"person_id", "item_id", "category"}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A2", &[]any{"p1", "q1", 4}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A3", &[]any{"p2", "q1", 1}), ShouldBeNil)
		So(f.SaveAs(path), ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("When the first sheet is read", func() {
			got, _, err := ingest.NewReader().ReadFile(ctx, path)

			Convey("Then it matches the CSV layout", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []model.Response{
					{PersonID: "p1", ItemID: "q1", Category: 4},
					{PersonID: "p2", ItemID: "q1", Category: 1},
				})
			})
		})

		Convey("When a missing sheet is requested", func() {
			_, _, err := ingest.NewReader(ingest.WithSheet("Nope")).ReadFile(ctx, path)

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a CSV file on disk", t, func() {
		path := write(t, "r.CSV", "person_id,item_id,category\np1,q1,3\n")
		got, _, err := ingest.NewReader().ReadFile(ctx, path)

		Convey("Then the extension is matched case-insensitively", func() {
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
		})
	})

	Convey("Given an unsupported extension", t, func() {
		_, _, err := ingest.NewReader().ReadFile(ctx, write(t, "r.txt", "x"))

		Convey("Then it is rejected", func() {
			So(errors.Is(err, ingest.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, _, err := ingest.NewReader().ReadFile(ctx, filepath.Join(t.TempDir(), "gone.csv"))

		Convey("Then the open error surfaces", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestItemMapAndNorms(t *testing.T) {
	Convey("Given a YAML item map", t, func() {
		path := write(t, "items.yaml", `
constructs:
  XX: Custom Construct
items:
  - {item: q1, construct: RT}
  - {item: q2, construct: RT, reverse: true}
  - {item: q3, construct: XX}
reverse_items: [q3]
`)
		m, err := ingest.LoadItemMap(path)

		Convey("Then the lookup reflects it", func() {
			So(err, ShouldBeNil)
			So(m.Constructs(), ShouldResemble, []string{"RT", "XX"})
			So(m.Items("RT"), ShouldResemble, []string{"q1", "q2"})
			So(m.ReverseItems(), ShouldResemble, []string{"q2", "q3"})
			So(m.ConstructName("XX"), ShouldEqual, "Custom Construct")
			So(m.ConstructName("RT"), ShouldEqual, "Risk Taking")
		})
	})

	Convey("Given a JSON item map", t, func() {
		path := write(t, "items.json", `{"items":[{"item":"a","construct":"PS"}]}`)
		m, err := ingest.LoadItemMap(path)

		Convey("Then it parses too", func() {
			So(err, ShouldBeNil)
			So(m.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given an item map written by WriteItemMap", t, func() {
		path := filepath.Join(t.TempDir(), "out.yaml")
		err := ingest.WriteItemMap(path, ingest.ItemMapFile{
			Items: []model.ItemMapping{{ItemID: "q1", Construct: "A", Reverse: true}},
		})
		So(err, ShouldBeNil)
		m, err := ingest.LoadItemMap(path)

		Convey("Then it loads back", func() {
			So(err, ShouldBeNil)
			So(m.IsReverse("q1"), ShouldBeTrue)
		})
	})

	Convey("Given a norms file", t, func() {
		path := write(t, "norms.yaml", `
RT:
  mean: 2.5
  std: 0.5
PS:
  values: [1, 2, 3]
`)
		norms, err := ingest.LoadNorms(path)

		Convey("Then each construct carries its norm", func() {
			So(err, ShouldBeNil)
			So(*norms["RT"].Mean, ShouldEqual, 2.5)
			So(*norms["RT"].Std, ShouldEqual, 0.5)
			So(norms["PS"].Mean, ShouldBeNil)
			So(norms["PS"].Values, ShouldResemble, []float64{1, 2, 3})
		})
	})

	Convey("Given a malformed file", t, func() {
		_, err := ingest.LoadNorms(write(t, "bad.yaml", "RT: [unclosed"))

		Convey("Then decoding fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
