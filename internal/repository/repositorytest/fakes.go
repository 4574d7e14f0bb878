// Package repositorytest provides in-memory fakes for the repository
// interfaces plus a transaction stub, so service behavior that normally
// spans a database transaction runs as a plain unit test. The fakes keep
// their state outside the stub transaction and never roll it back; tests
// arrange flows where a failure happens before the writes they assert on.
package repositorytest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/playhall/platform/internal/domain"
	"github.com/playhall/platform/internal/repository"
)

var (
	_ repository.DB                = (*DB)(nil)
	_ pgx.Tx                       = (*Tx)(nil)
	_ repository.PlayerRepository  = (*Players)(nil)
	_ repository.CatalogRepository = (*Catalog)(nil)
	_ repository.WalletRepository  = (*Wallets)(nil)
	_ repository.LedgerRepository  = (*Ledger)(nil)
	_ repository.BetRepository     = (*Bets)(nil)
	_ repository.SessionRepository = (*Sessions)(nil)
	_ repository.BonusRepository   = (*Grants)(nil)
	_ repository.OutboxRepository  = (*Outbox)(nil)
)

// Recorder keeps the order of the calls a test cares about. A nil Recorder
// records nothing.
type Recorder struct {
	Names []string
}

func (r *Recorder) note(name string) {
	if r != nil {
		r.Names = append(r.Names, name)
	}
}

// Tx is a transaction stub. The fakes keep their own state, so only commit
// and rollback bookkeeping matters; a statement method reaching the embedded
// nil interface panics, which marks a test wiring bug.
type Tx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
}

func (t *Tx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// DB satisfies the pool seam services begin transactions on.
type DB struct {
	repository.DBTX
	Txs []*Tx
}

func (d *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	tx := &Tx{}
	d.Txs = append(d.Txs, tx)
	return tx, nil
}

// Committed counts committed transactions.
func (d *DB) Committed() int {
	n := 0
	for _, tx := range d.Txs {
		if tx.Committed {
			n++
		}
	}
	return n
}

// Players serves one player and one tenant.
type Players struct {
	Player *domain.Player
	Tenant *domain.Tenant
}

func (p *Players) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Player, error) {
	if p.Player != nil && p.Player.ID == id {
		return p.Player, nil
	}
	return nil, nil
}

func (p *Players) FindTenant(ctx context.Context, db repository.DBTX, id uuid.UUID) (*domain.Tenant, error) {
	if p.Tenant != nil && p.Tenant.ID == id {
		return p.Tenant, nil
	}
	return nil, nil
}

// Catalog serves one tenant game.
type Catalog struct {
	Game *domain.TenantGame
}

func (c *Catalog) FindGame(ctx context.Context, db repository.DBTX, tenantID, gameID uuid.UUID) (*domain.TenantGame, error) {
	if c.Game != nil && c.Game.TenantID == tenantID && c.Game.ID == gameID {
		return c.Game, nil
	}
	return nil, nil
}

// Wallets holds one player's wallet set and mutates it in place.
type Wallets struct {
	Set   domain.WalletSet
	Calls *Recorder
}

func (w *Wallets) FindSet(ctx context.Context, db repository.DBTX, playerID uuid.UUID) (domain.WalletSet, error) {
	return w.Set, nil
}

func (w *Wallets) LockSet(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (domain.WalletSet, error) {
	w.Calls.note("wallets.LockSet")
	return w.Set, nil
}

func (w *Wallets) Create(ctx context.Context, db repository.DBTX, wallet *domain.Wallet) error {
	switch wallet.Type {
	case domain.WalletReal:
		w.Set.Real = wallet
	case domain.WalletBonus:
		w.Set.Bonus = wallet
	}
	return nil
}

func (w *Wallets) UpsertBonus(ctx context.Context, tx pgx.Tx, playerID uuid.UUID, currency string) (*domain.Wallet, error) {
	if w.Set.Bonus == nil {
		w.Set.Bonus = &domain.Wallet{
			ID:       uuid.New(),
			PlayerID: playerID,
			Type:     domain.WalletBonus,
			Currency: currency,
		}
	}
	return w.Set.Bonus, nil
}

func (w *Wallets) ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) (*domain.Wallet, error) {
	target := w.byID(walletID)
	if target == nil {
		return nil, domain.ErrNotFound("wallet", walletID.String())
	}
	if target.Balance+delta < 0 {
		return nil, domain.ErrInsufficientFunds("wallet balance cannot cover this operation")
	}
	target.Balance += delta
	snap := *target
	return &snap, nil
}

func (w *Wallets) byID(id uuid.UUID) *domain.Wallet {
	if w.Set.Real != nil && w.Set.Real.ID == id {
		return w.Set.Real
	}
	if w.Set.Bonus != nil && w.Set.Bonus.ID == id {
		return w.Set.Bonus
	}
	return nil
}

// Ledger appends entries in memory.
type Ledger struct {
	Entries []domain.LedgerEntry
}

func (l *Ledger) Insert(ctx context.Context, db repository.DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.LedgerEntry, error) {
	rt, rid := params.Ref()
	entry := domain.LedgerEntry{
		ID:            uuid.New(),
		WalletID:      params.WalletID,
		Type:          params.Type,
		Amount:        params.Amount,
		BalanceAfter:  balanceAfter,
		ReferenceType: rt,
		ReferenceID:   rid,
		CreatedAt:     time.Now(),
	}
	l.Entries = append(l.Entries, entry)
	return &entry, nil
}

func (l *Ledger) ListByPlayer(ctx context.Context, db repository.DBTX, playerID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	return l.Entries, nil
}

func (l *Ledger) HasCampaignCredit(ctx context.Context, db repository.DBTX, walletID, campaignID uuid.UUID) (bool, error) {
	for _, e := range l.Entries {
		if e.WalletID == walletID && e.Type == domain.EntryBonusCredit &&
			e.ReferenceType != nil && *e.ReferenceType == domain.RefCampaign &&
			e.ReferenceID != nil && *e.ReferenceID == campaignID.String() {
			return true, nil
		}
	}
	return false, nil
}

// Activity is one DailyActivity response.
type Activity struct {
	Wagered int64
	Won     int64
}

// Bets stores bets and outcomes and serves canned aggregates. DailyQueue is
// consumed one response per call; once drained, Daily answers every call.
type Bets struct {
	Bets       []domain.Bet
	Outcomes   []domain.BetOutcome
	Daily      Activity
	DailyQueue []Activity
	Windowed   int64
}

func (b *Bets) Insert(ctx context.Context, db repository.DBTX, bet *domain.Bet) (*domain.Bet, error) {
	cp := *bet
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	b.Bets = append(b.Bets, cp)
	return &cp, nil
}

func (b *Bets) InsertOutcome(ctx context.Context, db repository.DBTX, outcome *domain.BetOutcome) error {
	b.Outcomes = append(b.Outcomes, *outcome)
	return nil
}

func (b *Bets) DailyActivity(ctx context.Context, db repository.DBTX, playerID uuid.UUID, dayStart time.Time) (int64, int64, error) {
	if len(b.DailyQueue) > 0 {
		a := b.DailyQueue[0]
		b.DailyQueue = b.DailyQueue[1:]
		return a.Wagered, a.Won, nil
	}
	return b.Daily.Wagered, b.Daily.Won, nil
}

func (b *Bets) SumWageredBetween(ctx context.Context, db repository.DBTX, playerID uuid.UUID, from, to time.Time) (int64, error) {
	return b.Windowed, nil
}

// Sessions holds at most one open session, the way the partial unique index
// does. A non-nil CreateErr fails the next Create once and installs
// AfterConflict as the open session, modeling the settlement that won the
// race and committed first.
type Sessions struct {
	Open          *domain.GameSession
	CreateErr     error
	AfterConflict *domain.GameSession
	Rounds        []domain.GameRound
}

func (s *Sessions) FindOpenForUpdate(ctx context.Context, tx pgx.Tx, playerID, gameID uuid.UUID) (*domain.GameSession, error) {
	return s.Open, nil
}

func (s *Sessions) Create(ctx context.Context, tx pgx.Tx, gs *domain.GameSession) (*domain.GameSession, error) {
	if s.CreateErr != nil {
		err := s.CreateErr
		s.CreateErr = nil
		s.Open = s.AfterConflict
		return nil, err
	}
	cp := *gs
	s.Open = &cp
	return &cp, nil
}

func (s *Sessions) Close(ctx context.Context, db repository.DBTX, sessionID uuid.UUID, at time.Time) error {
	if s.Open != nil && s.Open.ID == sessionID {
		ended := at
		s.Open.EndedAt = &ended
		s.Open = nil
	}
	return nil
}

func (s *Sessions) CloseOpenForPlayer(ctx context.Context, db repository.DBTX, playerID uuid.UUID, at time.Time) error {
	if s.Open != nil && s.Open.PlayerID == playerID {
		ended := at
		s.Open.EndedAt = &ended
		s.Open = nil
	}
	return nil
}

func (s *Sessions) NextRoundNumber(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (int, error) {
	max := 0
	for _, r := range s.Rounds {
		if r.SessionID == sessionID && r.RoundNumber > max {
			max = r.RoundNumber
		}
	}
	return max + 1, nil
}

func (s *Sessions) InsertRound(ctx context.Context, tx pgx.Tx, r *domain.GameRound) (*domain.GameRound, error) {
	cp := *r
	s.Rounds = append(s.Rounds, cp)
	return &cp, nil
}

func (s *Sessions) CloseRound(ctx context.Context, tx pgx.Tx, roundID uuid.UUID, at time.Time) error {
	for i := range s.Rounds {
		if s.Rounds[i].ID == roundID {
			ended := at
			s.Rounds[i].EndedAt = &ended
		}
	}
	return nil
}

// Grants holds campaigns and at most one ACTIVE grant per instance.
type Grants struct {
	Campaigns []domain.BonusCampaign
	Active    *domain.PlayerBonus
	Completed []domain.PlayerBonus
	FindErr   error
	Calls     *Recorder
}

func (g *Grants) ActiveThresholdCampaigns(ctx context.Context, db repository.DBTX, tenantID uuid.UUID, now time.Time) ([]domain.BonusCampaign, error) {
	return g.Campaigns, nil
}

func (g *Grants) FindActiveGrantForUpdate(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (*domain.PlayerBonus, error) {
	g.Calls.note("grants.FindActiveGrantForUpdate")
	if g.FindErr != nil {
		return nil, g.FindErr
	}
	if g.Active != nil && g.Active.PlayerID == playerID {
		return g.Active, nil
	}
	return nil, nil
}

func (g *Grants) InsertGrant(ctx context.Context, tx pgx.Tx, pb *domain.PlayerBonus) (*domain.PlayerBonus, error) {
	if g.Active != nil {
		return nil, domain.ErrConflict("player already holds an active bonus")
	}
	cp := *pb
	cp.ID = uuid.New()
	cp.Status = domain.BonusActive
	g.Active = &cp
	return &cp, nil
}

func (g *Grants) AddWagered(ctx context.Context, tx pgx.Tx, grantID uuid.UUID, amount int64) (*domain.PlayerBonus, error) {
	if g.Active == nil || g.Active.ID != grantID {
		return nil, domain.ErrNotFound("player_bonus", grantID.String())
	}
	g.Active.Wagered += amount
	cp := *g.Active
	return &cp, nil
}

func (g *Grants) Complete(ctx context.Context, tx pgx.Tx, grantID uuid.UUID, at time.Time) error {
	if g.Active != nil && g.Active.ID == grantID {
		done := at
		g.Active.Status = domain.BonusCompleted
		g.Active.CompletedAt = &done
		g.Completed = append(g.Completed, *g.Active)
		g.Active = nil
	}
	return nil
}

// Outbox collects staged drafts.
type Outbox struct {
	Drafts    []domain.OutboxDraft
	Published []int64
}

func (o *Outbox) Insert(ctx context.Context, db repository.DBTX, draft domain.OutboxDraft) error {
	o.Drafts = append(o.Drafts, draft)
	return nil
}

func (o *Outbox) FetchUnpublished(ctx context.Context, db repository.DBTX, limit int) ([]repository.OutboxRow, error) {
	rows := make([]repository.OutboxRow, 0, len(o.Drafts))
	for i, d := range o.Drafts {
		if len(rows) == limit {
			break
		}
		rows = append(rows, repository.OutboxRow{Seq: int64(i + 1), Draft: d})
	}
	return rows, nil
}

func (o *Outbox) MarkPublished(ctx context.Context, db repository.DBTX, ids []int64) error {
	o.Published = append(o.Published, ids...)
	return nil
}
