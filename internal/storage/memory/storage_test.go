package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/scorekeeper/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestLoadEmpty() {
	doc, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(doc)
}

func (s *StorageSuite) TestSaveAndLoad() {
	rec := model.NewUserRecord("alice")
	rec.AddScore(model.ModeSprint, 42)

	err := s.storage.Save(s.ctx, model.LedgerDocument{"alice": rec})
	s.Require().NoError(err)
	s.Equal(1, s.storage.Saves())

	doc, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Contains(doc, "alice")
	s.JSONEq(`{"sprintScores":[42],"blitzScores":[],"totalGames":1,"totalEquations":0}`, string(doc["alice"]))
}

func (s *StorageSuite) TestFailedSaveKeepsPreviousContent() {
	s.Require().NoError(s.storage.Save(s.ctx, model.LedgerDocument{"alice": model.NewUserRecord("alice")}))
	before := s.storage.Bytes()

	s.storage.FailSaves(errors.New("disk full"))
	err := s.storage.Save(s.ctx, model.LedgerDocument{})
	s.ErrorIs(err, model.ErrIOFailure)
	s.Equal(before, s.storage.Bytes())

	s.storage.FailSaves(nil)
	s.NoError(s.storage.Save(s.ctx, model.LedgerDocument{}))
}

func (s *StorageSuite) TestFailLoads() {
	s.storage.FailLoads(errors.New("unreadable"))
	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrIOFailure)
}

func (s *StorageSuite) TestNewWithDataMalformed() {
	st := NewWithData([]byte("{not json"))
	_, err := st.Load(s.ctx)
	s.ErrorIs(err, model.ErrIOFailure)
}
