package models

import (
	"github.com/kofflo/cobram/internal/errors"
)

// Entities are compared by pointer identity throughout the domain: two
// *Player values are the same player only if they are the same object.
// The app layer keeps the registries that guarantee uniqueness.

// Nation is a country a player or tournament belongs to
type Nation struct {
	Name string `json:"name"`
	Code string `json:"code"` // IOC three-letter code
}

// NewNation validates and creates a nation
func NewNation(name, code string) (*Nation, error) {
	if name == "" {
		return nil, errors.InvalidInput("invalid name for a nation")
	}
	if len(code) != 3 {
		return nil, errors.InvalidInput("invalid code for a nation")
	}
	return &Nation{Name: name, Code: code}, nil
}

// Player is a tennis player
type Player struct {
	Name    string  `json:"name"`
	Surname string  `json:"surname"`
	Nation  *Nation `json:"nation"`
}

// NewPlayer validates and creates a player
func NewPlayer(name, surname string, nation *Nation) (*Player, error) {
	if name == "" {
		return nil, errors.InvalidInput("invalid name for a player")
	}
	if surname == "" {
		return nil, errors.InvalidInput("invalid surname for a player")
	}
	if nation == nil {
		return nil, errors.InvalidInput("invalid nation for a player")
	}
	return &Player{Name: name, Surname: surname, Nation: nation}, nil
}

// Gambler is a betting-league participant
type Gambler struct {
	Nickname string `json:"nickname"`
}

// NewGambler validates and creates a gambler
func NewGambler(nickname string) (*Gambler, error) {
	if nickname == "" {
		return nil, errors.InvalidInput("invalid nickname for a gambler")
	}
	return &Gambler{Nickname: nickname}, nil
}
