// Package render visualizes burrow solutions.
//
// # Solution Graphs
//
// [ToDOT] turns a solved move sequence into a Graphviz chain: one node per
// intermediate state, labelled with its puzzle diagram, and one edge per
// move, labelled with the move and its energy. [RenderSVG] lays the DOT
// source out in-process with go-graphviz:
//
//	dot, err := render.ToDOT(initial, res.Moves, catalog, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Move Tables
//
// [Table] renders the same move sequence as a bordered text table with a
// running energy total, suitable for terminals and logs.
package render
