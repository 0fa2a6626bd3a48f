package registry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage/memory"
	"github.com/mcoot/scorekeeper/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ledger  *memory.Storage
	service *Service
	metrics *metrics.Metrics
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.metrics = metrics.New()
	s.ledger = memory.New()
	s.service = s.load(s.ledger)
}

func (s *ServiceSuite) load(ledger *memory.Storage) *Service {
	svc := New(ledger, testutil.NopLogger(), s.metrics)
	s.Require().NoError(svc.Load(s.ctx))
	return svc
}

func (s *ServiceSuite) register(name string) model.UserRecord {
	rec, err := s.service.Register(s.ctx, name)
	s.Require().NoError(err)
	return rec
}

func (s *ServiceSuite) submit(name string, mode model.Mode, value float64) model.UserRecord {
	rec, err := s.service.SubmitScore(s.ctx, name, mode, value)
	s.Require().NoError(err)
	return rec
}

// Register

func (s *ServiceSuite) TestRegisterCreatesAndPersists() {
	rec := s.register("alice")

	s.Equal("alice", rec.Name)
	s.Empty(rec.SprintScores)
	s.NotNil(rec.SprintScores)
	s.NotNil(rec.BlitzScores)
	s.Zero(rec.TotalGames)
	s.Zero(rec.TotalEquations)

	s.Equal(1, s.ledger.Saves())
	s.JSONEq(`{"alice":{"sprintScores":[],"blitzScores":[],"totalGames":0,"totalEquations":0}}`, string(s.ledger.Bytes()))
}

func (s *ServiceSuite) TestRegisterTwiceIsIdempotent() {
	s.register("alice")
	s.submit("alice", model.ModeSprint, 42)
	s.submit("alice", model.ModeBlitz, 7)
	saves := s.ledger.Saves()

	again := s.register("alice")

	s.Equal([]float64{42}, again.SprintScores)
	s.Equal([]float64{7}, again.BlitzScores)
	s.Equal(2, again.TotalGames)
	s.Equal([]string{"alice"}, s.service.ListUsernames())
	s.Equal(saves, s.ledger.Saves(), "re-registering an up-to-date record must not write")
}

func (s *ServiceSuite) TestRegisterIsCaseSensitive() {
	s.register("alice")
	s.register("Alice")

	s.ElementsMatch([]string{"alice", "Alice"}, s.service.ListUsernames())
}

func (s *ServiceSuite) TestRegisterEmptyName() {
	_, err := s.service.Register(s.ctx, "")

	s.ErrorIs(err, model.ErrInvalidInput)
	s.Zero(s.ledger.Saves())
	s.Zero(s.service.Len())
}

func (s *ServiceSuite) TestRegisterBackfillsOnFirstTouch() {
	// A record that predates the sequence fields
	s.service.users["old"] = &model.UserRecord{Name: "old", TotalGames: 4}
	s.service.order = append(s.service.order, "old")

	rec := s.register("old")

	s.NotNil(rec.SprintScores)
	s.NotNil(rec.BlitzScores)
	s.Equal(4, rec.TotalGames)
	s.Equal(1, s.ledger.Saves())
	s.JSONEq(`{"old":{"sprintScores":[],"blitzScores":[],"totalGames":4,"totalEquations":0}}`, string(s.ledger.Bytes()))

	// The live record is upgraded too, so a second touch writes nothing
	s.NotNil(s.service.users["old"].SprintScores)
	s.NotNil(s.service.users["old"].BlitzScores)
	s.register("old")
	s.Equal(1, s.ledger.Saves())
}

func (s *ServiceSuite) TestRegisterBackfillRollsBackOnSaveFailure() {
	s.service.users["old"] = &model.UserRecord{Name: "old", TotalGames: 4}
	s.service.order = append(s.service.order, "old")
	s.ledger.FailSaves(errors.New("disk full"))

	_, err := s.service.Register(s.ctx, "old")

	s.ErrorIs(err, model.ErrIOFailure)
	s.Nil(s.service.users["old"].SprintScores)
	s.Equal(4, s.service.users["old"].TotalGames)
}

func (s *ServiceSuite) TestRegisterRollsBackOnSaveFailure() {
	s.ledger.FailSaves(errors.New("disk full"))

	_, err := s.service.Register(s.ctx, "alice")

	s.ErrorIs(err, model.ErrIOFailure)
	s.Zero(s.service.Len())
	s.Empty(s.service.ListUsernames())
	_, ok := s.service.Get("alice")
	s.False(ok)

	s.ledger.FailSaves(nil)
	s.register("alice")
	s.Equal([]string{"alice"}, s.service.ListUsernames())
}

// SubmitScore

func (s *ServiceSuite) TestSubmitScoreAppendsAndCounts() {
	s.register("alice")

	s.submit("alice", model.ModeSprint, 42)
	rec := s.submit("alice", model.ModeSprint, 30)

	s.Equal([]float64{42, 30}, rec.SprintScores)
	s.Empty(rec.BlitzScores)
	s.Equal(2, rec.TotalGames)
	s.Equal(3, s.ledger.Saves())
}

func (s *ServiceSuite) TestSubmitScoreUnregisteredUser() {
	_, err := s.service.SubmitScore(s.ctx, "ghost", model.ModeSprint, 1)

	s.ErrorIs(err, model.ErrInvalidInput)
	s.ErrorIs(err, model.ErrUserNotRegistered)
	s.Zero(s.ledger.Saves())
}

func (s *ServiceSuite) TestSubmitScoreRejectsNonFinite() {
	s.register("alice")

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := s.service.SubmitScore(s.ctx, "alice", model.ModeBlitz, v)
		s.ErrorIs(err, model.ErrInvalidInput)
	}

	rec, _ := s.service.Get("alice")
	s.Zero(rec.TotalGames)
}

func (s *ServiceSuite) TestSubmitScoreRejectsUnknownMode() {
	s.register("alice")

	_, err := s.service.SubmitScore(s.ctx, "alice", model.Mode("marathon"), 1)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestSubmitScoreRollsBackOnSaveFailure() {
	s.register("alice")
	s.submit("alice", model.ModeSprint, 42)

	s.ledger.FailSaves(errors.New("disk full"))
	_, err := s.service.SubmitScore(s.ctx, "alice", model.ModeSprint, 10)
	s.ErrorIs(err, model.ErrIOFailure)

	rec, _ := s.service.Get("alice")
	s.Equal([]float64{42}, rec.SprintScores)
	s.Equal(1, rec.TotalGames)
	s.Equal(s.service.Snapshot()["alice"], rec)
}

func (s *ServiceSuite) TestTotalGamesMatchesAcceptedSubmissions() {
	rng := rand.New(rand.NewSource(7))
	names := []string{"alice", "bob", "carol"}
	for _, n := range names {
		s.register(n)
	}

	accepted := map[string]int{}
	for i := 0; i < 200; i++ {
		name := names[rng.Intn(len(names))]
		mode := model.Modes[rng.Intn(len(model.Modes))]
		value := float64(rng.Intn(100))
		if rng.Intn(10) == 0 {
			value = math.NaN()
		}
		if _, err := s.service.SubmitScore(s.ctx, name, mode, value); err == nil {
			accepted[name]++
		}
	}

	for _, n := range names {
		rec, ok := s.service.Get(n)
		s.Require().True(ok)
		s.Equal(accepted[n], rec.TotalGames, n)
		s.Equal(rec.TotalGames, len(rec.SprintScores)+len(rec.BlitzScores), n)
	}
}

func (s *ServiceSuite) TestConcurrentSubmissions() {
	s.register("alice")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mode := model.ModeSprint
			if i%2 == 0 {
				mode = model.ModeBlitz
			}
			_, _ = s.service.SubmitScore(s.ctx, "alice", mode, float64(i))
		}(i)
	}
	wg.Wait()

	rec, _ := s.service.Get("alice")
	s.Equal(50, rec.TotalGames)
	s.Len(rec.SprintScores, 25)
	s.Len(rec.BlitzScores, 25)
}

// Load / persistence

func (s *ServiceSuite) TestRoundTrip() {
	s.register("alice")
	s.register("bob")
	s.submit("alice", model.ModeSprint, 42)
	s.submit("alice", model.ModeSprint, 30)
	s.submit("bob", model.ModeBlitz, 5)
	before := s.service.Snapshot()

	reloaded := s.load(s.ledger)

	s.Equal(before, reloaded.Snapshot())
	s.ElementsMatch(s.service.ListUsernames(), reloaded.ListUsernames())
}

func (s *ServiceSuite) TestLoadMigratesLegacyRecordsDurably() {
	ledger := memory.NewWithData([]byte(`{
		"alice": {"scores": [12, 9], "totalGames": 2, "totalEquations": 0},
		"bob": {"sprintScores": [3], "totalGames": 1, "totalEquations": 0}
	}`))

	svc := s.load(ledger)

	alice, _ := svc.Get("alice")
	s.Equal([]float64{12, 9}, alice.SprintScores)
	s.Equal([]float64{}, alice.BlitzScores)
	bob, _ := svc.Get("bob")
	s.Equal([]float64{}, bob.BlitzScores)

	s.Equal(1, ledger.Saves())
	s.JSONEq(`{
		"alice": {"sprintScores": [12, 9], "blitzScores": [], "totalGames": 2, "totalEquations": 0},
		"bob": {"sprintScores": [3], "blitzScores": [], "totalGames": 1, "totalEquations": 0}
	}`, string(ledger.Bytes()))

	exposition := s.scrape()
	s.Contains(exposition, `scorekeeper_ledger_records_migrated_total{from_version="0"} 1`)
	s.Contains(exposition, `scorekeeper_ledger_records_migrated_total{from_version="1"} 1`)

	// Reloading the migrated document is a no-op
	s.load(ledger)
	s.Equal(1, ledger.Saves())
	s.Contains(s.scrape(), `scorekeeper_ledger_records_migrated_total{from_version="0"} 1`)
}

func (s *ServiceSuite) scrape() string {
	rr := httptest.NewRecorder()
	s.metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func (s *ServiceSuite) TestLoadCurrentDocumentDoesNotWrite() {
	ledger := memory.NewWithData([]byte(`{"alice":{"sprintScores":[1],"blitzScores":[],"totalGames":1,"totalEquations":0}}`))

	svc := s.load(ledger)

	s.Zero(ledger.Saves())
	s.Equal(1, svc.Len())
}

func (s *ServiceSuite) TestLoadMalformedDocument() {
	svc := New(memory.NewWithData([]byte(`{"alice": [`)), testutil.NopLogger(), nil)

	err := svc.Load(s.ctx)
	s.ErrorIs(err, model.ErrIOFailure)

	_, err = svc.Register(s.ctx, "bob")
	s.ErrorIs(err, ErrNotLoaded)
}

func (s *ServiceSuite) TestLoadMalformedRecord() {
	svc := New(memory.NewWithData([]byte(`{"alice": {"sprintScores": "fast"}}`)), testutil.NopLogger(), nil)

	s.ErrorIs(svc.Load(s.ctx), model.ErrIOFailure)
}

func (s *ServiceSuite) TestLoadFailsWhenMigrationCannotPersist() {
	ledger := memory.NewWithData([]byte(`{"alice":{"scores":[1]}}`))
	ledger.FailSaves(errors.New("read-only"))
	svc := New(ledger, testutil.NopLogger(), nil)

	s.ErrorIs(svc.Load(s.ctx), model.ErrIOFailure)
	s.Zero(svc.Len())
}

func (s *ServiceSuite) TestLoadOrderIsSorted() {
	svc := s.load(memory.NewWithData([]byte(`{"carol":{},"alice":{},"bob":{}}`)))

	s.Equal([]string{"alice", "bob", "carol"}, svc.ListUsernames())
}

func (s *ServiceSuite) TestListUsernamesInsertionOrder() {
	s.register("zed")
	s.register("amy")
	s.register("mo")

	s.Equal([]string{"zed", "amy", "mo"}, s.service.ListUsernames())
}

func (s *ServiceSuite) TestSnapshotIsDeepCopy() {
	s.register("alice")
	s.submit("alice", model.ModeSprint, 10)

	snap := s.service.Snapshot()
	rec := snap["alice"]
	rec.SprintScores[0] = 999
	snap["mallory"] = model.NewUserRecord("mallory")

	again := s.service.Snapshot()
	s.Equal([]float64{10}, again["alice"].SprintScores)
	s.NotContains(again, "mallory")
}

func (s *ServiceSuite) TestSnapshotMatchesLedger() {
	s.register("alice")
	s.submit("alice", model.ModeBlitz, 3)

	reloaded := s.load(memory.NewWithData(s.ledger.Bytes()))
	s.Equal(s.service.Snapshot(), reloaded.Snapshot())
}

func (s *ServiceSuite) TestFlush() {
	s.register("alice")
	saves := s.ledger.Saves()

	s.Require().NoError(s.service.Flush(s.ctx))
	s.Equal(saves+1, s.ledger.Saves())

	s.Require().NoError(New(memory.New(), testutil.NopLogger(), nil).Flush(s.ctx))
}

func (s *ServiceSuite) TestOperationsBeforeLoad() {
	svc := New(memory.New(), testutil.NopLogger(), nil)

	_, err := svc.Register(s.ctx, "alice")
	s.ErrorIs(err, ErrNotLoaded)
	_, err = svc.SubmitScore(s.ctx, "alice", model.ModeSprint, 1)
	s.ErrorIs(err, ErrNotLoaded)
}
