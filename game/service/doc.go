// Package service provides the query layer of the movement engine.
//
// The service package implements:
//   - Ruleset listing, retrieval and storage
//   - Overland cost matrix queries
//   - Combat tile entry cost, border crossing and single step queries
//   - Combat casting range penalties
//
// Core Interfaces:
//
// MovementService is the main service interface used by the REST, WebSocket
// and MCP transports. RulesetManager supplies the rulesets each query is
// resolved against; config.Manager is the file-backed implementation.
//
// Usage:
//
//	rulesets, err := config.NewManager("rulesets", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := service.NewMovementService(rulesets, logger)
//
//	resp, err := svc.OverlandCostMatrix(ctx, "default", &service.CostMatrixRequest{...})
//
// Errors:
//
// IsBadRequest, IsNotFound and IsDataIntegrity classify errors for the
// transports. Data integrity errors mean the query named a tile type, unit or
// border the ruleset does not define.
package service
