package service

import (
	"context"

	"github.com/wricardo/realm-movement/game/config"
)

// MovementService defines all movement queries, each resolved against a
// named ruleset. An empty ruleset name selects the default ruleset.
type MovementService interface {
	// Rulesets
	ListRulesets(ctx context.Context) ([]*config.RulesetInfo, error)
	GetRuleset(ctx context.Context, name string) (*config.Ruleset, error)
	SaveRuleset(ctx context.Context, name string, r *config.Ruleset) error

	// Overland
	OverlandCostMatrix(ctx context.Context, ruleset string, req *CostMatrixRequest) (*CostMatrixResponse, error)

	// Combat
	CombatCostToEnter(ctx context.Context, ruleset string, req *CostToEnterRequest) (*CostToEnterResponse, error)
	CombatCanCross(ctx context.Context, ruleset string, req *CanCrossRequest) (*CanCrossResponse, error)
	CombatMoveCost(ctx context.Context, ruleset string, req *MoveCostRequest) (*MoveCostResponse, error)
	CastingRangePenalty(ctx context.Context, ruleset string, req *CastingPenaltyRequest) (*CastingPenaltyResponse, error)
}

// RulesetManager handles ruleset loading
type RulesetManager interface {
	LoadRuleset(name string) (*config.Ruleset, error)
	ListRulesets() ([]*config.RulesetInfo, error)
	GetDefault() *config.Ruleset
	SaveRuleset(name string, r *config.Ruleset) error
}
