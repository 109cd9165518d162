package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/export"
	"github.com/smartystreets/goconvey/convey"
)

const itemMapYAML = `constructs:
  A: Agreeableness
  B: Boldness
items:
  - {item: i1, construct: A}
  - {item: i2, construct: A}
  - {item: i3, construct: A}
  - {item: i4, construct: B}
  - {item: i5, construct: B}
  - {item: i6, construct: B}
`

func writeInputs(t *testing.T, dir string) (responses, itemMap string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("person_id,item_id,category\n")
	for p := 1; p <= 8; p++ {
		for i := 1; i <= 6; i++ {
			v := 2
			if (p <= 4) == (i <= 3) {
				v = 4
			}
			fmt.Fprintf(&b, "p%d,i%d,%d\n", p, i, v)
		}
	}
	responses = filepath.Join(dir, "responses.csv")
	itemMap = filepath.Join(dir, "item_map.yaml")
	if err := os.WriteFile(responses, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(itemMap, []byte(itemMapYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return responses, itemMap
}

func execute(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	convey.Convey("Given response and item map files configured through the environment", t, func() {
		dir := t.TempDir()
		responses, itemMap := writeInputs(t, dir)
		t.Setenv("VICTORIA_INPUT__ITEM_MAP", itemMap)
		t.Setenv("VICTORIA_PIPELINE__OPTIMIZE_CLUSTERS", "false")
		t.Setenv("VICTORIA_PIPELINE__N_CLUSTERS", "2")
		t.Setenv("VICTORIA_BATCH__WORKERS", "1")
		t.Setenv("VICTORIA_LOG_LEVEL", "error")
		outDir := filepath.Join(dir, "out")

		convey.Convey("When running the pipeline on the file", func() {
			out, err := execute(context.Background(), "run", "-o", outDir, responses)

			convey.Convey("Then one line per run is printed and artifacts are exported", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "persons=8 items=6 clusters=2")

				runs, readErr := os.ReadDir(outDir)
				convey.So(readErr, convey.ShouldBeNil)
				convey.So(runs, convey.ShouldHaveLength, 1)
				_, statErr := os.Stat(filepath.Join(outDir, runs[0].Name(), export.FileSummary))
				convey.So(statErr, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the same file is given twice", func() {
			out, err := execute(context.Background(), "run", "-o", "", responses, responses)

			convey.Convey("Then the second is reported as a duplicate", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "duplicate")
				convey.So(strings.Count(out, "persons=8"), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When one input is missing", func() {
			_, err := execute(context.Background(), "run", "-o", "", responses, filepath.Join(dir, "missing.csv"))

			convey.Convey("Then the command fails", func() {
				convey.So(errors.Is(err, ErrRunsFailed), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config is invalid", func() {
			t.Setenv("VICTORIA_PIPELINE__ESTIMATOR", "gradient")
			_, err := execute(context.Background(), "run", responses)

			convey.Convey("Then setup fails with a hint", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.FlattenHints(err), convey.ShouldContainSubstring, "VICTORIA_")
			})
		})
	})
}

func TestServeCommand(t *testing.T) {
	convey.Convey("Given a canceled context", t, func() {
		t.Setenv("VICTORIA_LOG_LEVEL", "error")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("When serving", func() {
			_, err := execute(ctx, "serve", "--addr", "127.0.0.1:0")

			convey.Convey("Then the server shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestRunRequiresFiles(t *testing.T) {
	convey.Convey("Given no file arguments", t, func() {
		_, err := execute(context.Background(), "run")

		convey.Convey("Then cobra rejects the call", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
