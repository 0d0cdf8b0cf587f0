// Package io provides JSON import and export for burrow layouts and search
// results.
//
// # Layout Format
//
// A layout file spells the hallway and each room as a string of class
// symbols, with '.' for a vacancy. Rooms are listed left to right and read
// from the entrance down:
//
//	{
//	  "hallway": "...........",
//	  "entrances": [2, 4, 6, 8],
//	  "rooms": ["BA", "CD", "BC", "DA"]
//	}
//
// "entrances" may be omitted, in which case the canonical positions 2, 4,
// 6, ... are used. "hallway" may be omitted as well and then defaults to an
// empty hallway of width 2n+3 for n rooms.
//
// # Import
//
// Use [ReadJSONFile] to read a layout from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	l, err := io.ReadJSONFile("burrow.json", burrow.DefaultCatalog())
//
// Both validate the decoded layout against the catalog, so the result can be
// passed straight to [burrow.NewState].
//
// # Export
//
// [WriteJSON] and [WriteJSONFile] write a layout in the same format, so a
// layout survives an export and re-import unchanged. [WriteResultJSON]
// writes a search result with moves spelled out by class symbol.
package io
