package postgres

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/mcoot/aseguradoss/internal/model"
)

// playerRecord is the row layout of the players table
type playerRecord struct {
	ID           int            `gorm:"primaryKey;autoIncrement:false"`
	Name         string         `gorm:"size:100;not null"`
	Money        int            `gorm:"not null"`
	Salary       int            `gorm:"not null"`
	Rent         int            `gorm:"not null"`
	Position     int            `gorm:"not null"`
	Insured      datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	SkipNextTurn bool           `gorm:"default:false"`
}

func (playerRecord) TableName() string { return "players" }

// eventRecord is one catalog entry; Ord keeps the catalog order
type eventRecord struct {
	Ord      int      `gorm:"primaryKey;autoIncrement:false"`
	EventID  int      `gorm:"not null"`
	Kind     string   `gorm:"size:50;not null"`
	Text     string   `gorm:"not null"`
	Amount   int      `gorm:"not null"`
	Variable string   `gorm:"size:20;not null"`
	Discount *float64
}

func (eventRecord) TableName() string { return "eventos" }

func playerToRecord(p *model.Player) (playerRecord, error) {
	insured := p.Insured
	if insured == nil {
		insured = []model.InsuranceKind{}
	}
	data, err := json.Marshal(insured)
	if err != nil {
		return playerRecord{}, err
	}
	return playerRecord{
		ID:           int(p.ID),
		Name:         p.Name,
		Money:        p.Money,
		Salary:       p.Salary,
		Rent:         p.Rent,
		Position:     p.Position,
		Insured:      datatypes.JSON(data),
		SkipNextTurn: p.SkipNextTurn,
	}, nil
}

func (r *playerRecord) toModel() (*model.Player, error) {
	insured := []model.InsuranceKind{}
	if len(r.Insured) > 0 {
		if err := json.Unmarshal(r.Insured, &insured); err != nil {
			return nil, err
		}
	}
	return &model.Player{
		ID:           model.PlayerID(r.ID),
		Name:         r.Name,
		Money:        r.Money,
		Salary:       r.Salary,
		Rent:         r.Rent,
		Position:     r.Position,
		Insured:      insured,
		SkipNextTurn: r.SkipNextTurn,
	}, nil
}

func eventToRecord(ord int, e *model.Event) eventRecord {
	return eventRecord{
		Ord:      ord,
		EventID:  e.ID,
		Kind:     string(e.Kind),
		Text:     e.Text,
		Amount:   e.Amount,
		Variable: string(e.Variable),
		Discount: e.Discount,
	}
}

func (r *eventRecord) toModel() *model.Event {
	return &model.Event{
		ID:       r.EventID,
		Kind:     model.InsuranceKind(r.Kind),
		Text:     r.Text,
		Amount:   r.Amount,
		Variable: model.Variable(r.Variable),
		Discount: r.Discount,
	}
}
