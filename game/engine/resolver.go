package engine

import "fmt"

// ResolveMode selects which view of the map a tile type is resolved from
type ResolveMode int

const (
	// ResolveAuthoritative reads the true terrain. It is the zero value and
	// the cost matrix builder's default.
	ResolveAuthoritative ResolveMode = iota
	// ResolveRemembered reads a player's fog-of-war memory of the terrain
	ResolveRemembered
)

func (m ResolveMode) String() string {
	switch m {
	case ResolveAuthoritative:
		return "authoritative"
	case ResolveRemembered:
		return "remembered"
	default:
		return fmt.Sprintf("ResolveMode(%d)", int(m))
	}
}

// ParseResolveMode reads a mode name; empty means authoritative
func ParseResolveMode(s string) (ResolveMode, error) {
	switch s {
	case "", "authoritative":
		return ResolveAuthoritative, nil
	case "remembered":
		return ResolveRemembered, nil
	default:
		return ResolveAuthoritative, fmt.Errorf("unknown resolve mode %q", s)
	}
}

// TileTypeResolver turns a location's terrain into a tile type id. The second
// return value is false when the tile type is unknown.
type TileTypeResolver interface {
	ResolveTileType(terrain *TerrainData, mode ResolveMode) (string, bool)
}

// TerrainResolver is the default resolver. Both modes read TileTypeID; nil or
// empty terrain is unknown. In remembered mode a location with no memory
// resolves to FogTileTypeID when one is configured.
type TerrainResolver struct {
	FogTileTypeID string
}

// ResolveTileType implements TileTypeResolver
func (r TerrainResolver) ResolveTileType(terrain *TerrainData, mode ResolveMode) (string, bool) {
	if terrain != nil && terrain.TileTypeID != "" {
		return terrain.TileTypeID, true
	}
	if mode == ResolveRemembered && r.FogTileTypeID != "" {
		return r.FogTileTypeID, true
	}
	return "", false
}
