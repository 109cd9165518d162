package repository_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // fixture

func run(id string, offset time.Duration) repository.Run {
	sil := 0.42
	return repository.Run{
		ID:          id,
		Source:      id + ".csv",
		Fingerprint: "fp-" + id,
		CreatedAt:   t0.Add(offset),
		Persons:     10,
		Items:       20,
		Clusters:    3,
		Silhouette:  &sil,
		Warnings:    1,
		DurationMS:  12,
		Summary:     json.RawMessage(`{"ok":true}`),
	}
}

type storeRecorder struct {
	mu  sync.Mutex
	ops map[string]int
	n   int
}

func (r *storeRecorder) ObserveStore(op string, _ time.Duration, stored int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op]++
	if stored >= 0 {
		r.n = stored
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store with three runs", t, func() {
		rec := &storeRecorder{ops: map[string]int{}}
		s := repository.NewMemoryStore(repository.WithRecorder(rec), repository.WithMaxLimit(10))
		So(s.Save(ctx, run("b", time.Minute)), ShouldBeNil)
		So(s.Save(ctx, run("a", 0)), ShouldBeNil)
		So(s.Save(ctx, run("c", 2*time.Minute)), ShouldBeNil)

		Convey("Then Get returns a stored run with its summary", func() {
			r, err := s.Get(ctx, "a")
			So(err, ShouldBeNil)
			So(r.Source, ShouldEqual, "a.csv")
			So(string(r.Summary), ShouldEqual, `{"ok":true}`)
		})

		Convey("Then List returns newest first without summaries", func() {
			runs, err := s.List(ctx, 2)
			So(err, ShouldBeNil)
			So(runs, ShouldHaveLength, 2)
			So(runs[0].ID, ShouldEqual, "c")
			So(runs[1].ID, ShouldEqual, "b")
			So(runs[0].Summary, ShouldBeNil)
		})

		Convey("Then Count and the recorder agree", func() {
			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
			So(rec.ops["save"], ShouldEqual, 3)
			So(rec.n, ShouldEqual, 3)
		})

		Convey("Then duplicates, unknown ids and bad limits are rejected", func() {
			So(errors.Is(s.Save(ctx, run("a", time.Hour)), repository.ErrDuplicate), ShouldBeTrue)
			_, err := s.Get(ctx, "zzz")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = s.List(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			_, err = s.List(ctx, 11)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Then equal timestamps order by id", func() {
			So(s.Save(ctx, run("bb", time.Minute)), ShouldBeNil)
			runs, _ := s.List(ctx, 10)
			ids := make([]string, len(runs))
			for i, r := range runs {
				ids[i] = r.ID
			}
			So(ids, ShouldResemble, []string{"c", "b", "bb", "a"})
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)

			Convey("Then operations fail", func() {
				So(errors.Is(s.Save(ctx, run("d", 0)), repository.ErrClosed), ShouldBeTrue)
				_, err := s.Count(ctx)
				So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		s := repository.NewMemoryStore()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Save(ctx, run(fmt.Sprintf("r%02d", i), time.Duration(i)*time.Second))
			}()
		}
		wg.Wait()

		Convey("Then every run is stored in order", func() {
			n, _ := s.Count(ctx)
			So(n, ShouldEqual, 50)
			runs, err := s.List(ctx, 100)
			So(err, ShouldBeNil)
			So(runs[0].ID, ShouldEqual, "r49")
			So(runs[49].ID, ShouldEqual, "r00")
		})
	})
}
