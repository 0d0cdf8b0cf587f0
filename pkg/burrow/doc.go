// Package burrow finds the least-energy way to sort amphipods into their
// side rooms.
//
// # The Puzzle
//
// A burrow is a linear hallway with a row of side rooms hanging off it. Each
// room belongs to one class of amphipod and opens onto the hallway at an
// entrance cell:
//
//	#############
//	#...........#
//	###B#C#B#D###
//	  #A#D#C#A#
//	  #########
//
// Amphipods start scattered across the rooms (and possibly the hallway) and
// must end up with every room holding only its own class. Moving one cell
// costs a fixed per-class energy (1, 10, 100 and 1000 for A, B, C and D in
// the [DefaultCatalog]). Two rules keep the problem finite:
//
//   - An amphipod that leaves a room stops in the hallway, never on an
//     entrance cell.
//   - An amphipod in the hallway only moves again to enter its own room, and
//     only when that room holds no foreigners. Once there it is settled and
//     never moves again.
//
// # Model
//
// [Hallway] and [Rooms] are copy-on-write snapshots: every operation returns
// a new value and leaves the receiver untouched. A [State] pairs the two with
// the energy spent so far. [State.Moves] enumerates the legal [Move] values
// (settling moves first, then exits into the hallway) and [State.Apply]
// derives the child state. Structural violations such as occupying a filled
// cell surface as typed errors ([OccupiedCellError], [EmptySlotError], ...)
// because they can only happen when move generation is wrong.
//
// # Search
//
// [Search] is a depth-first branch-and-bound. The best cost found so far is
// passed down as the bound of every recursive call and returned back up, so
// no state is shared between sibling branches. A branch whose accumulated
// energy already exceeds the bound is pruned. There is no lower-bound
// heuristic; the bound tightens only as complete solutions are found, which
// is why settling moves are tried first.
//
//	initial, err := burrow.NewState(layout, burrow.DefaultCatalog())
//	if err != nil {
//	    return err
//	}
//	res, err := burrow.Search{}.Solve(initial)
//	if err != nil {
//	    return err // invariant violation
//	}
//	if !res.Solved {
//	    // no sequence of legal moves sorts the burrow
//	}
//	fmt.Println(res.Cost)
//
// Setting [Search.Memoize] skips states that were already reached at a lower
// or equal cost. This does not change the result.
package burrow
