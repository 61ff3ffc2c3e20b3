package service_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/winrate/internal/adapters/history"
	service "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/domain/prediction"
	"github.com/okian/winrate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// wins/losses newest first, 30 minutes each with efficiency 1.2.
func specHistory() match.History {
	pattern := []bool{true, true, true, false, false, true, true, true, true, true, false, false}
	h := make(match.History, 0, len(pattern))
	for _, won := range pattern {
		h = append(h, match.Record{Won: won, DurationMinutes: 30, Efficiency: 1.2})
	}
	return h
}

func startedService(opts ...service.Option) *service.Service {
	loader := history.NewMemoryLoader()
	loader.Put("p1", specHistory())
	loader.Put("empty", match.History{})
	svc := service.New(append([]service.Option{service.WithLoader(loader)}, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report the default window and not be started", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["window"], ShouldEqual, 10)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithRecentWindow(5),
			service.WithLogger(logger.Get()),
			service.WithHistorySettings(history.Settings{Source: history.SourceFile, Dir: t.TempDir()}),
		)

		Convey("Then the window should be applied", func() {
			So(svc.GetStats()["window"], ShouldEqual, 5)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithHistorySettings(history.Settings{Dir: t.TempDir()}))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
				So(svc.GetStats()["historySource"], ShouldEqual, history.SourceFile)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping it should mark it as stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a service configured with an unknown history source", t, func() {
		svc := service.New(service.WithHistorySettings(history.Settings{Source: "ftp"}))

		Convey("Then Start should fail", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, history.ErrUnknownSource), ShouldBeTrue)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("Then Predict should fail with ErrNotStarted", func() {
			_, err := svc.Predict(context.Background(), "p1")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(service.ErrorKind(err), ShouldEqual, service.KindNotStarted)
		})
	})
}

func TestService_Predict(t *testing.T) {
	Convey("Given a started service backed by memory", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When predicting for a known player", func() {
			p, err := svc.Predict(ctx, "p1")

			Convey("Then the probability should match the formula", func() {
				So(err, ShouldBeNil)
				So(p.PlayerID, ShouldEqual, "p1")
				So(p.Matches, ShouldEqual, 12)
				So(p.Window, ShouldEqual, 10)
				So(round6(p.Probability), ShouldEqual, 0.682077)
				So(p.Percent, ShouldAlmostEqual, p.Probability*100, 1e-9)
				So(p.Breakdown, ShouldNotBeNil)
				So(p.Breakdown.RawScore, ShouldAlmostEqual, 0.6908333, 1e-6)
			})

			Convey("And the counters should advance", func() {
				So(svc.GetStats()["predictions"], ShouldEqual, int64(1))
				So(svc.GetStats()["failures"], ShouldEqual, int64(0))
			})
		})

		Convey("When predicting for an unknown player", func() {
			_, err := svc.Predict(ctx, "ghost")

			Convey("Then it should fail as not found", func() {
				So(errors.Is(err, history.ErrPlayerNotFound), ShouldBeTrue)
				So(service.ErrorKind(err), ShouldEqual, service.KindNotFound)
				So(svc.GetStats()["failures"], ShouldEqual, int64(1))
			})
		})

		Convey("When predicting for a player without matches", func() {
			_, err := svc.Predict(ctx, "empty")

			Convey("Then it should fail as empty history", func() {
				So(service.ErrorKind(err), ShouldEqual, service.KindEmptyHistory)
			})
		})

		Convey("When the player id is invalid", func() {
			_, err := svc.Predict(ctx, "../etc")

			Convey("Then it should fail as invalid", func() {
				So(service.ErrorKind(err), ShouldEqual, service.KindInvalidPlayerID)
			})
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Predict(cctx, "p1")

			Convey("Then it should fail as canceled", func() {
				So(service.ErrorKind(err), ShouldEqual, service.KindCanceled)
			})
		})
	})

	Convey("Given a service with a window of 3", t, func() {
		svc := startedService(service.WithRecentWindow(3))
		defer svc.Stop()

		Convey("Then the prediction should report that window", func() {
			p, err := svc.Predict(context.Background(), "p1")
			So(err, ShouldBeNil)
			So(p.Window, ShouldEqual, 3)
			So(p.Breakdown.Features.Window, ShouldEqual, 3)
		})
	})
}

func TestService_FileSource(t *testing.T) {
	Convey("Given a history directory with one player file", t, func() {
		dir := t.TempDir()
		csv := "1,30:00,3/1/3\n0,25:10,1/4/2\n"
		So(os.WriteFile(filepath.Join(dir, "alice_matches.csv"), []byte(csv), 0o600), ShouldBeNil)

		svc := service.New(service.WithHistorySettings(history.Settings{Source: history.SourceFile, Dir: dir}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then predicting should read the file", func() {
			p, err := svc.Predict(context.Background(), "alice")
			So(err, ShouldBeNil)
			So(p.Matches, ShouldEqual, 2)
			So(p.Probability, ShouldBeBetween, 0.0, 1.0)
		})
	})
}

func TestService_HTTPSourceCancellation(t *testing.T) {
	Convey("Given a service backed by an http history source", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("1,30:00,18/0/18\n"))
		}))
		defer srv.Close()

		loader, err := history.NewHTTPLoader(srv.URL, history.WithRateLimit(1000))
		So(err, ShouldBeNil)
		svc := service.New(service.WithLoader(loader))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When the request context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := svc.Predict(ctx, "p1")

			Convey("Then it should fail as canceled, not as an unavailable source", func() {
				So(service.ErrorKind(err), ShouldEqual, service.KindCanceled)
				So(errors.Is(err, history.ErrSourceUnavailable), ShouldBeFalse)
			})
		})

		Convey("When the request context is live", func() {
			p, err := svc.Predict(context.Background(), "p1")

			Convey("Then the prediction should succeed", func() {
				So(err, ShouldBeNil)
				So(p.Matches, ShouldEqual, 1)
			})
		})
	})
}

func TestService_StatsWindow(t *testing.T) {
	Convey("Given a service with an injected predictor using its own window", t, func() {
		svc := service.New(
			service.WithRecentWindow(10),
			service.WithPredictor(prediction.NewFormulaPredictor(prediction.WithRecentWindow(7))),
			service.WithLoader(history.NewMemoryLoader()),
		)

		Convey("Then stats should report the predictor's window", func() {
			So(svc.GetStats()["window"], ShouldEqual, 7)
			So(svc.Start(context.Background()), ShouldBeNil)
			defer svc.Stop()
			So(svc.GetStats()["window"], ShouldEqual, 7)
		})
	})
}

func TestErrorKind(t *testing.T) {
	Convey("Given wrapped errors", t, func() {
		So(service.ErrorKind(nil), ShouldEqual, "")
		So(service.ErrorKind(history.ErrMalformedSource), ShouldEqual, service.KindMalformedSource)
		So(service.ErrorKind(errors.Join(history.ErrSourceUnavailable, errors.New("dial"))), ShouldEqual, service.KindSourceUnavailable)
		So(service.ErrorKind(context.DeadlineExceeded), ShouldEqual, service.KindCanceled)
		So(service.ErrorKind(errors.New("boom")), ShouldEqual, service.KindInternal)
	})
}

func TestOptionsFromConfig(t *testing.T) {
	Convey("Given a configuration pointing at a history directory", t, func() {
		cfg := config.New()
		cfg.RecentWindow = 4
		cfg.HistoryDir = t.TempDir()

		Convey("When building a service from it", func() {
			svc := service.New(service.OptionsFromConfig(cfg)...)
			err := svc.Start(context.Background())
			defer svc.Stop()

			Convey("Then the window and source should be applied", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["window"], ShouldEqual, 4)
				So(stats["historySource"], ShouldEqual, history.SourceFile)
			})
		})
	})

	Convey("Given a nil configuration", t, func() {
		So(service.OptionsFromConfig(nil), ShouldBeEmpty)
	})
}
