package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/radieske/sportsbook-engine/internal/engine/domain"
)

// Querier é satisfeito por *sql.DB e *sql.Tx; o Scope decide qual.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implementa Store sobre database/sql + lib/pq.
type Postgres struct{ q Querier }

// NewPostgres retorna um Store ligado direto ao pool (fora de escopo).
// Para mutações multi-registro use um Scope.
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{q: db} }

// ---- accounts ----

const accountCols = `id, username, status, balance_cents, pending_cents,
	total_wagered_cents, total_winnings_cents, bet_count,
	min_bet_cents, max_bet_cents, created_at, updated_at`

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Username, &a.Status, &a.BalanceCents, &a.PendingCents,
		&a.TotalWageredCents, &a.TotalWinningsCents, &a.BetCount,
		&a.MinBetCents, &a.MaxBetCents, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *Postgres) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(p.q.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1`, id))
}

func (p *Postgres) GetAccountForUpdate(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(p.q.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1 FOR UPDATE`, id))
}

func (p *Postgres) UpdateAccountBalances(ctx context.Context, a *domain.Account) error {
	_, err := p.q.ExecContext(ctx, `
		UPDATE accounts SET
			balance_cents=$1, pending_cents=$2,
			total_wagered_cents=$3, total_winnings_cents=$4,
			bet_count=$5, updated_at=NOW()
		WHERE id=$6`,
		a.BalanceCents, a.PendingCents,
		a.TotalWageredCents, a.TotalWinningsCents,
		a.BetCount, a.ID,
	)
	return err
}

// ---- matches ----

const matchCols = `id, external_id, sport, home_team, away_team, start_time,
	status, score, odds, last_updated, created_at, updated_at`

func scanMatch(row *sql.Row) (*domain.Match, error) {
	var m domain.Match
	var score, odds []byte
	var lastUpdated sql.NullTime
	err := row.Scan(&m.ID, &m.ExternalID, &m.Sport, &m.HomeTeam, &m.AwayTeam, &m.StartTime,
		&m.Status, &score, &odds, &lastUpdated, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(score) > 0 {
		var s domain.Score
		if err := json.Unmarshal(score, &s); err != nil {
			return nil, fmt.Errorf("decode score: %w", err)
		}
		m.Score = &s
	}
	if len(odds) > 0 {
		if err := json.Unmarshal(odds, &m.Odds); err != nil {
			return nil, fmt.Errorf("decode odds: %w", err)
		}
	}
	if lastUpdated.Valid {
		m.LastUpdated = lastUpdated.Time
	}
	return &m, nil
}

func (p *Postgres) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	return scanMatch(p.q.QueryRowContext(ctx,
		`SELECT `+matchCols+` FROM matches WHERE id=$1`, id))
}

func (p *Postgres) GetMatchByExternalID(ctx context.Context, externalID string) (*domain.Match, error) {
	return scanMatch(p.q.QueryRowContext(ctx,
		`SELECT `+matchCols+` FROM matches WHERE external_id=$1`, externalID))
}

func (p *Postgres) ListMatches(ctx context.Context, status domain.MatchStatus, limit int) ([]domain.Match, error) {
	if limit <= 0 {
		limit = 200
	}
	q := `SELECT ` + matchCols + ` FROM matches`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += fmt.Sprintf(` ORDER BY start_time ASC LIMIT %d`, limit)

	rows, err := p.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var m domain.Match
		var score, odds []byte
		var lastUpdated sql.NullTime
		if err := rows.Scan(&m.ID, &m.ExternalID, &m.Sport, &m.HomeTeam, &m.AwayTeam, &m.StartTime,
			&m.Status, &score, &odds, &lastUpdated, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if len(score) > 0 {
			var s domain.Score
			if err := json.Unmarshal(score, &s); err == nil {
				m.Score = &s
			}
		}
		if len(odds) > 0 {
			_ = json.Unmarshal(odds, &m.Odds)
		}
		if lastUpdated.Valid {
			m.LastUpdated = lastUpdated.Time
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func matchJSON(m *domain.Match) (score, odds []byte, err error) {
	if m.Score != nil {
		if score, err = json.Marshal(m.Score); err != nil {
			return nil, nil, err
		}
	}
	if odds, err = json.Marshal(m.Odds); err != nil {
		return nil, nil, err
	}
	return score, odds, nil
}

func (p *Postgres) InsertMatch(ctx context.Context, m *domain.Match) error {
	score, odds, err := matchJSON(m)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		INSERT INTO matches
		  (id, external_id, sport, home_team, away_team, start_time, status, score, odds, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())`,
		m.ID, m.ExternalID, m.Sport, m.HomeTeam, m.AwayTeam, m.StartTime, m.Status, score, odds,
	)
	return err
}

func (p *Postgres) UpdateMatch(ctx context.Context, m *domain.Match) error {
	score, odds, err := matchJSON(m)
	if err != nil {
		return err
	}
	_, err = p.q.ExecContext(ctx, `
		UPDATE matches SET
			sport=$1, home_team=$2, away_team=$3, start_time=$4,
			status=$5, score=$6, odds=$7, last_updated=NOW(), updated_at=NOW()
		WHERE id=$8`,
		m.Sport, m.HomeTeam, m.AwayTeam, m.StartTime, m.Status, score, odds, m.ID,
	)
	return err
}

// ---- bets ----

const betCols = `id, account_id, type, amount_cents, potential_payout_cents,
	teaser_points, status, result, settled_at, settled_by, created_at, updated_at`

func (p *Postgres) InsertBet(ctx context.Context, b *domain.Bet) error {
	_, err := p.q.ExecContext(ctx, `
		INSERT INTO bets
		  (id, account_id, type, amount_cents, potential_payout_cents, teaser_points, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.AccountID, b.Type, b.AmountCents, b.PotentialPayoutCents, b.TeaserPoints, b.Status,
	)
	if err != nil {
		return err
	}
	for i := range b.Legs {
		leg := &b.Legs[i]
		snap, err := json.Marshal(leg.Snapshot)
		if err != nil {
			return fmt.Errorf("encode leg snapshot: %w", err)
		}
		var point sql.NullFloat64
		if leg.Point != nil {
			point = sql.NullFloat64{Float64: *leg.Point, Valid: true}
		}
		if _, err := p.q.ExecContext(ctx, `
			INSERT INTO bet_legs
			  (id, bet_id, idx, match_id, selection, price, market_key, point, status, match_snapshot)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			leg.ID, b.ID, i, leg.MatchID, leg.Selection, leg.Price, leg.MarketKey, point, leg.Status, snap,
		); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) UpdateBetSettlement(ctx context.Context, b *domain.Bet) error {
	var settledAt sql.NullTime
	if b.SettledAt != nil {
		settledAt = sql.NullTime{Time: *b.SettledAt, Valid: true}
	}
	_, err := p.q.ExecContext(ctx, `
		UPDATE bets SET
			status=$1, result=$2, potential_payout_cents=$3,
			settled_at=$4, settled_by=$5, updated_at=NOW()
		WHERE id=$6`,
		b.Status, b.Result, b.PotentialPayoutCents, settledAt, b.SettledBy, b.ID,
	)
	if err != nil {
		return err
	}
	for i := range b.Legs {
		if _, err := p.q.ExecContext(ctx,
			`UPDATE bet_legs SET status=$1 WHERE id=$2`,
			b.Legs[i].Status, b.Legs[i].ID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) ListPendingBetsByMatch(ctx context.Context, matchID string) ([]domain.Bet, error) {
	rows, err := p.q.QueryContext(ctx, `
		SELECT DISTINCT b.id, b.account_id, b.type, b.amount_cents, b.potential_payout_cents,
			b.teaser_points, b.status, b.result, b.settled_at, b.settled_by, b.created_at, b.updated_at
		FROM bets b
		JOIN bet_legs l ON l.bet_id = b.id
		WHERE b.status='pending' AND l.match_id=$1
		ORDER BY b.created_at ASC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return p.collectBets(ctx, rows)
}

func (p *Postgres) ListBetsByAccount(ctx context.Context, accountID string, status domain.BetStatus, limit int) ([]domain.Bet, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := `SELECT ` + betCols + ` FROM bets WHERE account_id=$1`
	args := []any{accountID}
	if status != "" {
		q += ` AND status=$2`
		args = append(args, status)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := p.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return p.collectBets(ctx, rows)
}

func (p *Postgres) collectBets(ctx context.Context, rows *sql.Rows) ([]domain.Bet, error) {
	var bets []domain.Bet
	var ids []string
	for rows.Next() {
		var b domain.Bet
		var settledAt sql.NullTime
		var result, settledBy sql.NullString
		if err := rows.Scan(&b.ID, &b.AccountID, &b.Type, &b.AmountCents, &b.PotentialPayoutCents,
			&b.TeaserPoints, &b.Status, &result, &settledAt, &settledBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Result = result.String
		b.SettledBy = settledBy.String
		if settledAt.Valid {
			t := settledAt.Time
			b.SettledAt = &t
		}
		bets = append(bets, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bets) == 0 {
		return bets, nil
	}

	legsByBet, err := p.loadLegs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bets {
		bets[i].Legs = legsByBet[bets[i].ID]
	}
	return bets, nil
}

func (p *Postgres) loadLegs(ctx context.Context, betIDs []string) (map[string][]domain.Leg, error) {
	rows, err := p.q.QueryContext(ctx, `
		SELECT id, bet_id, match_id, selection, price, market_key, point, status, match_snapshot
		FROM bet_legs
		WHERE bet_id = ANY($1)
		ORDER BY bet_id, idx ASC`, pq.Array(betIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Leg, len(betIDs))
	for rows.Next() {
		var leg domain.Leg
		var betID string
		var point sql.NullFloat64
		var snap []byte
		if err := rows.Scan(&leg.ID, &betID, &leg.MatchID, &leg.Selection, &leg.Price,
			&leg.MarketKey, &point, &leg.Status, &snap); err != nil {
			return nil, err
		}
		if point.Valid {
			v := point.Float64
			leg.Point = &v
		}
		if len(snap) > 0 {
			if err := json.Unmarshal(snap, &leg.Snapshot); err != nil {
				return nil, fmt.Errorf("decode leg snapshot: %w", err)
			}
		}
		out[betID] = append(out[betID], leg)
	}
	return out, rows.Err()
}

// ---- ledger ----

func (p *Postgres) InsertLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := p.q.ExecContext(ctx, `
		INSERT INTO ledger
		  (id, account_id, amount_cents, type, status,
		   balance_before_cents, balance_after_cents,
		   reference_type, reference_id, reason, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.AccountID, e.AmountCents, e.Type, e.Status,
		e.BalanceBeforeCents, e.BalanceAfterCents,
		e.ReferenceType, e.ReferenceID, e.Reason, e.Description, e.CreatedAt,
	)
	return err
}
