package aggregate

import (
	"fmt"

	"github.com/BaSui01/wordcount/types"
)

// State 聚合任务的生命周期状态
type State int

const (
	StateIdle State = iota
	StateSplitting
	StateWorkersRunning
	StateJoined
	StateSnapshotReady
	StateFailed
)

// String returns the state name used in logs and metrics labels.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSplitting:
		return "splitting"
	case StateWorkersRunning:
		return "workers_running"
	case StateJoined:
		return "joined"
	case StateSnapshotReady:
		return "snapshot_ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// 合法的状态转换。除 SnapshotReady 外，任何状态都可以进入 Failed。
var transitions = map[State][]State{
	StateIdle:           {StateSplitting, StateFailed},
	StateSplitting:      {StateWorkersRunning, StateFailed},
	StateWorkersRunning: {StateJoined, StateFailed},
	StateJoined:         {StateSnapshotReady, StateFailed},
}

// CanTransition reports whether from → to is a legal job transition.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func invalidTransition(from, to State) *types.Error {
	return types.NewError(types.ErrInvalidTransition,
		fmt.Sprintf("illegal job transition %s -> %s", from, to)).
		WithHTTPStatus(500)
}
