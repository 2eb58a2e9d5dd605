package topics

const (
	// Partidas criadas/atualizadas pela ingestão de odds.
	MatchUpdates = "match_updates"

	// Apostas que atingiram status terminal na liquidação.
	BetSettled = "bet_settled"
)
