// Package topology describes the shape of a game map and answers the
// coordinate questions that both overland movement and tactical combat ask:
// is a coordinate on the map, where does one step in a direction land, and how
// far apart are two locations once wrap-around is taken into account.
//
// Three coordinate system types are supported:
//   - square: 8 directions, used by the overland map
//   - diamond: 8 directions on a staggered isometric layout, used by combat maps
//   - hex: 6 directions on an odd-row offset layout
//
// Directions are numbered from 1, clockwise, starting at "up".
package topology
