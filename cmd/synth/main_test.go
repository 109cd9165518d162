package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSynthCommand(t *testing.T) {
	convey.Convey("Given an output directory", t, func() {
		dir := t.TempDir()

		convey.Convey("When generating an xlsx dataset", func() {
			var out, errOut bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&errOut)
			cmd.SetArgs([]string{"--persons", "10", "--constructs", "2", "--items", "3", "--format", "xlsx", "-o", dir})
			err := cmd.ExecuteContext(context.Background())

			convey.Convey("Then both files are written and printed", func() {
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Fields(out.String())
				convey.So(lines, convey.ShouldResemble, []string{
					filepath.Join(dir, "responses.xlsx"),
					filepath.Join(dir, "item_map.yaml"),
				})
				for _, p := range lines {
					_, statErr := os.Stat(p)
					convey.So(statErr, convey.ShouldBeNil)
				}
			})
		})

		convey.Convey("When the config is invalid", func() {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--persons", "1", "-o", dir})

			convey.Convey("Then the command fails", func() {
				convey.So(cmd.ExecuteContext(context.Background()), convey.ShouldNotBeNil)
			})
		})
	})
}
