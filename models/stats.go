package models

type TopUser struct {
	TgID      int64   `json:"tg_id"`
	Username  *string `json:"username"`
	FullName  *string `json:"full_name"`
	VoteCount int64   `json:"vote_count"`
}

type OverallStats struct {
	TotalCandidates int64      `json:"total_candidates"`
	TotalUsers      int64      `json:"total_users"`
	TotalVotes      int64      `json:"total_votes"`
	Votes24h        int64      `json:"votes_24h"`
	Votes7d         int64      `json:"votes_7d"`
	TopUser         *TopUser   `json:"top_user"`
	TopCandidate    *Candidate `json:"top_candidate"`
}
