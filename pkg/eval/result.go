package eval

import "github.com/papercomputeco/writebench/pkg/score"

// Result is the flat record produced for one (episode, policy, track,
// budget, mode) combination, suitable for tabular export.
type Result struct {
	RunID     string `json:"run_id"`
	EpisodeID string `json:"episode_id"`
	Policy    string `json:"policy"`
	Mode      string `json:"mode"`
	Track     string `json:"track"`

	BudgetBytes   int `json:"budget_bytes"`
	BytesUsed     int `json:"bytes_used"`
	WriteActions  int `json:"write_actions"`
	ExpireActions int `json:"expire_actions"`

	score.Metrics
}
