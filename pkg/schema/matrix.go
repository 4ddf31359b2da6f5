package schema

// MatrixTask is one recurring duty. Its id survives period resets; only Completed is cleared.
type MatrixTask struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// MatrixRole groups the duties of one job.
type MatrixRole struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	IconName string       `json:"iconName"`
	Color    string       `json:"color"`
	Tasks    []MatrixTask `json:"tasks"`
}

// CloneMatrix deep-copies roles and their tasks.
func CloneMatrix(roles []MatrixRole) []MatrixRole {
	out := make([]MatrixRole, len(roles))
	for i, r := range roles {
		out[i] = r
		out[i].Tasks = append([]MatrixTask(nil), r.Tasks...)
	}
	return out
}
