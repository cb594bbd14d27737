package frontier

import "fmt"

// Policy selects how the Frontier pops its next candidate: dfs pops the
// queue's tail, bfs pops its head, and hybrid(H) head-pops while the
// candidate's absolute depth is within H, falling back to a tail-pop
// (after reinserting the over-depth head candidate) otherwise.
type Policy string

const (
	PolicyDFS    Policy = "dfs"
	PolicyBFS    Policy = "bfs"
	PolicyHybrid Policy = "hybrid"
)

// ParsePolicy validates a policy name read from config.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyDFS, PolicyBFS, PolicyHybrid:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown traversal policy %q", s)
	}
}
