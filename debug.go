package chime

import (
	"fmt"
	"time"

	"github.com/phanxgames/chime/internal/logx"
)

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations, which do not know their scene, can run the debug checks.
var globalDebug bool

// debugStats holds per-frame timing for a scene. Only populated when the
// scene is in debug mode.
type debugStats struct {
	simulateTime time.Duration
	physicsTime  time.Duration
	renderTime   time.Duration
	frame        FrameStats
}

// debugLog writes timing and draw counts at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	logx.Get().Debug("chime: frame",
		"scene", s.Name(),
		"simulate", stats.simulateTime,
		"physics", stats.physicsTime,
		"render", stats.renderTime,
		"geometry", stats.frame.GeometryDraws,
		"lights", stats.frame.LightDraws,
		"lines", stats.frame.LineDraws,
	)
}

// debugCheckDisposed panics when a disposed node is used in a tree
// operation. Only called in debug mode.
func debugCheckDisposed(n *NodeBase, op string) {
	if n.disposed {
		panic(fmt.Sprintf("chime debug: %s on disposed node %q", op, n.name))
	}
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if the tree below the root is deeper than
// debugMaxTreeDepth.
func debugCheckTreeDepth(n *NodeBase) {
	depth := 0
	for p := n.self; p != nil; p = p.Base().parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logx.Get().Warn("chime: tree depth exceeds threshold",
			"node", n.name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

const debugMaxChildCount = 1000

// debugCheckChildCount warns if a node has more than debugMaxChildCount
// children.
func debugCheckChildCount(n *NodeBase) {
	if len(n.children) > debugMaxChildCount {
		logx.Get().Warn("chime: child count exceeds threshold",
			"node", n.name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
