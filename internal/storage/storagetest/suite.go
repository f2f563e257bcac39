// Package storagetest holds the behavior every storage backend must share.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// Suite runs the storage contract against a backend. Embed it and assign
// Storage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func newPlayer(id model.PlayerID, name string) *model.Player {
	p := model.NewPlayer(id, name)
	return &p
}

func half() *float64 {
	v := 0.5
	return &v
}

// Player tests

func (s *Suite) TestListPlayersEmpty() {
	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestReplaceAndListSortedByID() {
	err := s.Storage.ReplacePlayers(s.Ctx, []*model.Player{
		newPlayer(3, "Carla"),
		newPlayer(1, "Ana"),
		newPlayer(2, "Beto"),
	})
	s.Require().NoError(err)

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerID(1), players[0].ID)
	s.Equal(model.PlayerID(2), players[1].ID)
	s.Equal(model.PlayerID(3), players[2].ID)
	s.Equal("Ana", players[0].Name)
	s.Equal(model.StartingMoney, players[0].Money)
	s.Equal(model.SalaryCell, players[0].Position)
}

func (s *Suite) TestReplaceDropsPreviousPlayers() {
	s.Require().NoError(s.Storage.ReplacePlayers(s.Ctx, []*model.Player{
		newPlayer(1, "Ana"),
		newPlayer(2, "Beto"),
	}))
	s.Require().NoError(s.Storage.ReplacePlayers(s.Ctx, []*model.Player{
		newPlayer(5, "Dani"),
	}))

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PlayerID(5), players[0].ID)

	_, err = s.Storage.GetPlayer(s.Ctx, 1)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, 42)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSavePlayerRoundTrip() {
	s.Require().NoError(s.Storage.ReplacePlayers(s.Ctx, []*model.Player{
		newPlayer(1, "Ana"),
		newPlayer(2, "Beto"),
	}))

	updated := newPlayer(1, "Ana")
	updated.Money = 650
	updated.Salary = 550
	updated.Rent = 120
	updated.Position = 4
	updated.Insured = []model.InsuranceKind{model.InsuranceCar, model.InsuranceHealth}
	updated.SkipNextTurn = true
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, updated))

	got, err := s.Storage.GetPlayer(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal(*updated, *got)

	other, err := s.Storage.GetPlayer(s.Ctx, 2)
	s.Require().NoError(err)
	s.Equal(model.StartingMoney, other.Money)
	s.Empty(other.Insured)
}

func (s *Suite) TestSavePlayerNotFound() {
	err := s.Storage.SavePlayer(s.Ctx, newPlayer(9, "Nadie"))
	s.ErrorIs(err, model.ErrPlayerNotFound)

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *Suite) TestUpdatePlayerPosition() {
	s.Require().NoError(s.Storage.ReplacePlayers(s.Ctx, []*model.Player{newPlayer(1, "Ana")}))

	s.Require().NoError(s.Storage.UpdatePlayerPosition(s.Ctx, 1, 17))

	got, err := s.Storage.GetPlayer(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal(17, got.Position)
	s.Equal(model.StartingMoney, got.Money)
}

func (s *Suite) TestUpdatePlayerPositionNotFound() {
	err := s.Storage.UpdatePlayerPosition(s.Ctx, 7, 3)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayers() {
	s.Require().NoError(s.Storage.ReplacePlayers(s.Ctx, []*model.Player{
		newPlayer(1, "Ana"),
		newPlayer(2, "Beto"),
	}))

	s.Require().NoError(s.Storage.DeletePlayers(s.Ctx))

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Empty(players)

	_, err = s.Storage.GetPlayer(s.Ctx, 1)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestReturnedPlayersAreCopies() {
	s.Require().NoError(s.Storage.ReplacePlayers(s.Ctx, []*model.Player{newPlayer(1, "Ana")}))

	got, err := s.Storage.GetPlayer(s.Ctx, 1)
	s.Require().NoError(err)
	got.Money = 0
	got.Insured = append(got.Insured, model.InsuranceLife)

	again, err := s.Storage.GetPlayer(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal(model.StartingMoney, again.Money)
	s.Empty(again.Insured)
}

// Event catalog tests

func (s *Suite) TestListEventsEmpty() {
	events, err := s.Storage.ListEvents(s.Ctx)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *Suite) TestSaveAndListEvents() {
	events := []*model.Event{
		{ID: 1, Kind: model.InsuranceCar, Text: "Golpe con el coche", Amount: -400, Variable: model.VariableMoney, Discount: half()},
		{ID: 2, Kind: model.KindGeneric, Text: "Te suben el sueldo", Amount: 100, Variable: model.VariableSalary},
	}
	s.Require().NoError(s.Storage.SaveEvents(s.Ctx, events))

	got, err := s.Storage.ListEvents(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(*events[0].Discount, *got[0].Discount)
	s.Equal(events[0].Text, got[0].Text)
	s.Equal(events[0].Amount, got[0].Amount)
	s.Nil(got[1].Discount)
	s.Equal(model.VariableSalary, got[1].Variable)
}

func (s *Suite) TestSaveEventsReplacesCatalog() {
	s.Require().NoError(s.Storage.SaveEvents(s.Ctx, []*model.Event{
		{ID: 1, Kind: model.KindGeneric, Text: "uno", Amount: 10, Variable: model.VariableMoney},
		{ID: 2, Kind: model.KindGeneric, Text: "dos", Amount: 20, Variable: model.VariableMoney},
	}))
	s.Require().NoError(s.Storage.SaveEvents(s.Ctx, []*model.Event{
		{ID: 3, Kind: model.KindGeneric, Text: "tres", Amount: 30, Variable: model.VariableRent},
	}))

	got, err := s.Storage.ListEvents(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("tres", got[0].Text)
}
