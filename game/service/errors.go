package service

import (
	"errors"

	"github.com/wricardo/realm-movement/game/combat"
	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/database"
	"github.com/wricardo/realm-movement/game/engine"
	"github.com/wricardo/realm-movement/game/topology"
)

// ErrBadRequest marks malformed requests
var ErrBadRequest = errors.New("bad request")

// IsBadRequest reports whether err was caused by the caller's input rather
// than by the ruleset or the server
func IsBadRequest(err error) bool {
	for _, target := range []error{
		ErrBadRequest,
		config.ErrInvalidRuleset,
		topology.ErrInvalidCoordinateSystem,
		engine.ErrEmptyStack,
		engine.ErrShapeMismatch,
		engine.ErrOutOfBounds,
		combat.ErrInvalidDirection,
		combat.ErrOutOfBounds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err names a ruleset that does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, config.ErrRulesetNotFound)
}

// IsDataIntegrity reports whether a query referenced reference data missing
// from the ruleset
func IsDataIntegrity(err error) bool {
	return database.IsLookupFailure(err)
}
