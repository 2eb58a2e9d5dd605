package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AtomicScope roda a unidade dentro de uma transação Postgres.
// Qualquer erro desfaz tudo (conta, aposta e ledger juntos).
type AtomicScope struct {
	DB *sql.DB
}

func (a *AtomicScope) Run(ctx context.Context, fn func(s Store) error) error {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Postgres{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// SequentialScope roda a mesma sequência sem transação, para
// deployments sem suporte a atomicidade multi-registro. Trade-off
// deliberado de disponibilidade sobre atomicidade: uma falha parcial
// pode deixar registros órfãos para reconciliação. Por isso a ordem
// dentro dos motores coloca o débito/ledger por último.
type SequentialScope struct {
	DB *sql.DB
}

func (s *SequentialScope) Run(ctx context.Context, fn func(st Store) error) error {
	return fn(&Postgres{q: s.DB})
}

// NewScope escolhe a estratégia a partir da flag de capacidade.
func NewScope(db *sql.DB, atomic bool) Scope {
	if atomic {
		return &AtomicScope{DB: db}
	}
	return &SequentialScope{DB: db}
}
