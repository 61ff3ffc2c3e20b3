package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/winrate/internal/adapters/history"
	"github.com/okian/winrate/internal/adapters/http/api"
	service "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/domain/prediction"
	"github.com/okian/winrate/internal/domain/types"
	"github.com/okian/winrate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockPredictor struct {
	prediction types.Prediction
	err        error
	calls      []string
}

func (m *mockPredictor) Predict(_ context.Context, playerID string) (types.Prediction, error) {
	m.calls = append(m.calls, playerID)
	if m.err != nil {
		return types.Prediction{}, m.err
	}
	p := m.prediction
	p.PlayerID = playerID
	return p, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func samplePrediction() types.Prediction {
	return types.Prediction{
		Probability: 0.682077,
		Percent:     68.2077,
		Matches:     12,
		Window:      10,
		Breakdown:   &prediction.Breakdown{RawScore: 0.690833, RecentStreak: 3},
	}
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true, "predictions": 3}})
	server.Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		mux := newMux(&mockPredictor{prediction: samplePrediction()})

		Convey("Then the health endpoint should serve metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should serve service counters", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
			So(body["predictions"], ShouldEqual, 3.0)
		})

		Convey("And the stats endpoint should reject other methods", func() {
			w := serve(mux, http.MethodPost, "/stats")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And unknown paths should not be found", func() {
			w := serve(mux, http.MethodGet, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPredictHandler(t *testing.T) {
	Convey("Given a predict endpoint backed by a working service", t, func() {
		deps := &mockPredictor{prediction: samplePrediction()}
		mux := newMux(deps)

		Convey("When requesting a prediction", func() {
			w := serve(mux, http.MethodGet, "/predict/alice")

			Convey("Then the prediction should be returned with its breakdown", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
				So(deps.calls, ShouldResemble, []string{"alice"})

				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["player_id"], ShouldEqual, "alice")
				So(body["probability"], ShouldEqual, 0.682077)
				So(body["matches"], ShouldEqual, 12.0)
				So(body["breakdown"], ShouldNotBeNil)
			})
		})

		Convey("When explain=false is passed", func() {
			w := serve(mux, http.MethodGet, "/predict/alice?explain=false")

			Convey("Then the breakdown should be omitted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				_, ok := body["breakdown"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When explain is not a boolean", func() {
			w := serve(mux, http.MethodGet, "/predict/alice?explain=maybe")

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the client sends a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/predict/alice", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-1")
			})
		})

		Convey("When the player id is missing or nested", func() {
			So(serve(mux, http.MethodGet, "/predict/").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/predict/a/b").Code, ShouldEqual, http.StatusBadRequest)
			So(deps.calls, ShouldBeEmpty)
		})

		Convey("When using a method other than GET", func() {
			w := serve(mux, http.MethodPost, "/predict/alice")

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
			})
		})
	})
}

func TestPredictHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{history.ErrInvalidPlayerID, http.StatusBadRequest, "bad_request"},
		{&history.LoadError{Source: "file", PlayerID: "x", Err: history.ErrPlayerNotFound}, http.StatusNotFound, "not_found"},
		{fmt.Errorf("predict: %w", prediction.ErrEmptyHistory), http.StatusUnprocessableEntity, "empty_history"},
		{errors.Join(history.ErrSourceUnavailable, errors.New("dial tcp")), http.StatusBadGateway, "source_unavailable"},
		{fmt.Errorf("load: %w", history.ErrMalformedSource), http.StatusBadGateway, "malformed_source"},
		{fmt.Errorf("predict: %w", context.Canceled), http.StatusServiceUnavailable, "canceled"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	Convey("Given a service that fails in different ways", t, func() {
		for _, tc := range cases {
			mux := newMux(&mockPredictor{err: tc.err})
			w := serve(mux, http.MethodGet, "/predict/alice")

			var body map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(w.Code, ShouldEqual, tc.status)
			So(body["code"], ShouldEqual, tc.code)
			So(body["message"], ShouldEqual, tc.err.Error())
		}
	})
}

func TestPredictHandler_CanceledHTTPSource(t *testing.T) {
	Convey("Given the API backed by a service reading an http history source", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("1,30:00,18/0/18\n"))
		}))
		defer upstream.Close()

		loader, err := history.NewHTTPLoader(upstream.URL, history.WithRateLimit(1000))
		So(err, ShouldBeNil)
		svc := service.New(service.WithLoader(loader))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When the client has gone away before the history is fetched", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			req := httptest.NewRequest(http.MethodGet, "/predict/alice", http.NoBody).WithContext(ctx)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should answer 503 canceled rather than 502", func() {
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(body["code"], ShouldEqual, "canceled")
			})
		})

		Convey("When the request is live", func() {
			w := serve(mux, http.MethodGet, "/predict/alice")

			Convey("Then the prediction should be served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
