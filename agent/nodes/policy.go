package orchestratornode

const (
	DefaultMaxToolRounds = 4
	maxToolRoundsCeiling = 16
)

func clampToolRounds(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxToolRounds
	case n > maxToolRoundsCeiling:
		return maxToolRoundsCeiling
	default:
		return n
	}
}
