package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/database"
	"github.com/thalesfercaetano/Pets-API/internal/repository/cache"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/swipe"
)

// openTestDB connects to TEST_DATABASE_URL, migrates it and empties every
// table. Tests are skipped when no database is available.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.RunMigrations(url, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.MustExec(`TRUNCATE matches, swipes, processo_adocao, pets, instituicoes, usuarios RESTART IDENTITY CASCADE`)
	return db
}

func TestRunMigrationsLogsSchemaVersion(t *testing.T) {
	openTestDB(t)

	core, logs := observer.New(zap.InfoLevel)
	if err := database.RunMigrations(os.Getenv("TEST_DATABASE_URL"), zap.New(core)); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	entries := logs.FilterMessage("matching schema ready").All()
	if len(entries) != 1 {
		t.Fatalf("expected one schema log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["version"] != uint64(2) || fields["applied"] != false {
		t.Fatalf("unexpected schema fields: %v", fields)
	}
}

func seedInstitution(t *testing.T, db *sqlx.DB, name string) int {
	t.Helper()
	var id int
	err := db.QueryRowx(`INSERT INTO instituicoes (nome, email) VALUES ($1, $2) RETURNING id`,
		name, name+"@abrigo.org").Scan(&id)
	if err != nil {
		t.Fatalf("seed institution: %v", err)
	}
	return id
}

func seedUser(t *testing.T, db *sqlx.DB, name string, active bool) int {
	t.Helper()
	var id int
	err := db.QueryRowx(`
		INSERT INTO usuarios (nome, email, senha_hash, ativo) VALUES ($1, $2, 'x', $3) RETURNING id
	`, name, name+"@example.com", active).Scan(&id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func seedPet(t *testing.T, db *sqlx.DB, institutionID int, name, status string, active bool) int {
	t.Helper()
	var id int
	err := db.QueryRowx(`
		INSERT INTO pets (nome, especie, sexo, instituicao_id, status_adocao, ativo)
		VALUES ($1, 'Cachorro', 'M', $2, $3, $4) RETURNING id
	`, name, institutionID, status, active).Scan(&id)
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return id
}

func intPtr(v int) *int { return &v }

func TestSwipeCreateRejectsSecondDecision(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSwipeRepository(db)

	inst := seedInstitution(t, db, "central")
	user := seedUser(t, db, "ana", true)
	pet := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)

	first := &domain.Swipe{UserID: intPtr(user), PetID: pet, Decision: domain.DecisionLike}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected generated fields, got %+v", first)
	}

	err := repo.Create(ctx, &domain.Swipe{UserID: intPtr(user), PetID: pet, Decision: domain.DecisionPass})
	if !errors.Is(err, domain.ErrAlreadyEvaluated) {
		t.Fatalf("expected ErrAlreadyEvaluated, got %v", err)
	}

	liked, err := repo.HasUserLike(ctx, user, pet)
	if err != nil || !liked {
		t.Fatalf("expected stored like, got %v (%v)", liked, err)
	}
	exists, err := repo.ExistsForInstitution(ctx, inst, pet)
	if err != nil || exists {
		t.Fatalf("expected no institution swipe, got %v (%v)", exists, err)
	}
}

func TestLockPetRequiresTransaction(t *testing.T) {
	db := openTestDB(t)
	repo := NewSwipeRepository(db)

	if err := repo.LockPet(context.Background(), 1); !errors.Is(err, errLockOutsideTx) {
		t.Fatalf("expected errLockOutsideTx, got %v", err)
	}

	err := NewTxManager(db).WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.LockPet(ctx, 1)
	})
	if err != nil {
		t.Fatalf("lock inside tx: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSwipeRepository(db)

	inst := seedInstitution(t, db, "central")
	user := seedUser(t, db, "ana", true)
	pet := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)

	boom := errors.New("boom")
	err := NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, &domain.Swipe{UserID: intPtr(user), PetID: pet, Decision: domain.DecisionLike}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	exists, err := repo.ExistsForUser(ctx, user, pet)
	if err != nil || exists {
		t.Fatalf("expected swipe to be rolled back, got %v (%v)", exists, err)
	}
}

func TestMatchCreateReturnsExistingRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMatchRepository(db)

	inst := seedInstitution(t, db, "central")
	user := seedUser(t, db, "ana", true)
	pet := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)

	first := &domain.Match{UserID: user, InstitutionID: inst, PetID: pet}
	created, err := repo.Create(ctx, first)
	if err != nil || !created {
		t.Fatalf("expected new match, got %v (%v)", created, err)
	}
	if first.Status != domain.MatchStatusActive {
		t.Fatalf("unexpected status: %s", first.Status)
	}

	second := &domain.Match{UserID: user, InstitutionID: inst, PetID: pet}
	created, err = repo.Create(ctx, second)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("expected second create to report an existing match")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing id %d, got %d", first.ID, second.ID)
	}
}

func TestMatchScopeStatusAndListing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMatchRepository(db)

	inst := seedInstitution(t, db, "central")
	other := seedInstitution(t, db, "gatos")
	ana := seedUser(t, db, "ana", true)
	bruno := seedUser(t, db, "bruno", true)
	rex := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)
	mia := seedPet(t, db, inst, "Mia", domain.PetStatusAvailable, true)

	older := &domain.Match{UserID: ana, InstitutionID: inst, PetID: rex}
	newer := &domain.Match{UserID: ana, InstitutionID: inst, PetID: mia}
	brunos := &domain.Match{UserID: bruno, InstitutionID: inst, PetID: rex}
	for _, m := range []*domain.Match{older, newer, brunos} {
		if _, err := repo.Create(ctx, m); err != nil {
			t.Fatalf("create match: %v", err)
		}
	}
	db.MustExec(`UPDATE matches SET ultima_interacao = $1 WHERE id = $2`, time.Now().Add(-time.Hour), older.ID)

	detail, err := repo.GetByID(ctx, older.ID, domain.MatchScope{})
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if detail.PetName == nil || *detail.PetName != "Rex" || detail.UserName == nil || *detail.UserName != "ana" {
		t.Fatalf("unexpected denormalized fields: %+v", detail)
	}

	if _, err := repo.GetByID(ctx, older.ID, domain.MatchScope{UserID: bruno}); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("expected foreign user scope to hide match, got %v", err)
	}
	if _, err := repo.GetByID(ctx, older.ID, domain.MatchScope{InstitutionID: other}); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("expected foreign institution scope to hide match, got %v", err)
	}

	list, err := repo.ListActiveByUser(ctx, ana)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected most recent interaction first, got %+v", list)
	}

	if _, err := repo.UpdateStatus(ctx, brunos.ID, domain.MatchStatusConversing, domain.MatchScope{UserID: ana}); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("expected scoped update to be refused, got %v", err)
	}

	updated, err := repo.UpdateStatus(ctx, older.ID, domain.MatchStatusConversing, domain.MatchScope{InstitutionID: inst})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.MatchStatusConversing || !updated.LastInteraction.After(updated.CreatedAt.Add(-time.Second)) {
		t.Fatalf("unexpected updated match: %+v", updated)
	}

	list, err = repo.ListActiveByInstitution(ctx, inst)
	if err != nil {
		t.Fatalf("list by institution: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected only active matches, got %d", len(list))
	}
	for _, m := range list {
		if m.ID == older.ID {
			t.Fatal("expected conversing match to leave the active listing")
		}
	}

	if _, err := repo.UpdateStatus(ctx, 9999, domain.MatchStatusCanceled, domain.MatchScope{}); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestCandidatePetsFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	swipes := NewSwipeRepository(db)
	matches := NewMatchRepository(db)
	repo := NewDiscoveryRepository(db)

	inst := seedInstitution(t, db, "central")
	user := seedUser(t, db, "ana", true)
	open := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)
	seedPet(t, db, inst, "Thor", "adotado", true)
	seedPet(t, db, inst, "Luna", domain.PetStatusAvailable, false)
	swiped := seedPet(t, db, inst, "Mia", domain.PetStatusAvailable, true)
	matched := seedPet(t, db, inst, "Bob", domain.PetStatusAvailable, true)

	if err := swipes.Create(ctx, &domain.Swipe{UserID: intPtr(user), PetID: swiped, Decision: domain.DecisionPass}); err != nil {
		t.Fatalf("seed swipe: %v", err)
	}
	if _, err := matches.Create(ctx, &domain.Match{UserID: user, InstitutionID: inst, PetID: matched}); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	pets, err := repo.CandidatePets(ctx, user, 10)
	if err != nil {
		t.Fatalf("candidate pets: %v", err)
	}
	if len(pets) != 1 || pets[0].ID != open {
		t.Fatalf("expected only pet %d, got %+v", open, pets)
	}
	if pets[0].InstitutionName == nil || *pets[0].InstitutionName != "central" {
		t.Fatalf("expected institution name, got %+v", pets[0])
	}

	// An unknown user has no history, so every available pet is a candidate.
	pets, err = repo.CandidatePets(ctx, 9999, 2)
	if err != nil {
		t.Fatalf("candidate pets: %v", err)
	}
	if len(pets) != 2 {
		t.Fatalf("expected limit to cap the feed at 2, got %d", len(pets))
	}
}

func TestInterestedUsers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	swipes := NewSwipeRepository(db)
	matches := NewMatchRepository(db)
	repo := NewDiscoveryRepository(db)

	inst := seedInstitution(t, db, "central")
	pet := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)
	other := seedPet(t, db, inst, "Mia", domain.PetStatusAvailable, true)
	ana := seedUser(t, db, "ana", true)
	bruno := seedUser(t, db, "bruno", true)
	carla := seedUser(t, db, "carla", false)
	davi := seedUser(t, db, "davi", true)
	eva := seedUser(t, db, "eva", true)

	for _, s := range []struct {
		user     int
		decision domain.Decision
	}{
		{ana, domain.DecisionLike},
		{bruno, domain.DecisionPass},
		{carla, domain.DecisionLike},
		{davi, domain.DecisionLike},
		{eva, domain.DecisionLike},
	} {
		if err := swipes.Create(ctx, &domain.Swipe{UserID: intPtr(s.user), PetID: pet, Decision: s.decision}); err != nil {
			t.Fatalf("seed swipe: %v", err)
		}
	}
	if _, err := matches.Create(ctx, &domain.Match{UserID: davi, InstitutionID: inst, PetID: pet}); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	canceled := &domain.Match{UserID: eva, InstitutionID: inst, PetID: pet}
	if _, err := matches.Create(ctx, canceled); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if _, err := matches.UpdateStatus(ctx, canceled.ID, domain.MatchStatusCanceled, domain.MatchScope{}); err != nil {
		t.Fatalf("cancel match: %v", err)
	}
	db.MustExec(`
		INSERT INTO processo_adocao (pet_id, usuario_id, instituicao_id, status)
		VALUES ($1, $2, $3, 'aprovada'), ($1, $2, $3, 'aprovada'), ($1, $2, $3, 'pendente')
	`, other, ana, inst)

	users, err := repo.InterestedUsers(ctx, pet, 10)
	if err != nil {
		t.Fatalf("interested users: %v", err)
	}

	got := map[int]*domain.UserProfile{}
	for _, u := range users {
		got[u.ID] = u
	}
	if len(got) != 2 || got[ana] == nil || got[eva] == nil {
		t.Fatalf("expected ana and eva, got %+v", users)
	}
	if got[ana].AdoptionsCount != 2 {
		t.Fatalf("expected 2 approved adoptions, got %d", got[ana].AdoptionsCount)
	}
	if got[eva].AdoptionsCount != 0 {
		t.Fatalf("expected no adoptions, got %d", got[eva].AdoptionsCount)
	}
}

func TestConcurrentOppositeLikesCreateOneMatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	uc := swipe.NewSwipeUseCase(
		NewTxManager(db),
		NewSwipeRepository(db),
		NewMatchRepository(db),
		NewPetRepository(db),
		cache.NewLocalMatchCache(time.Minute),
		nil,
		nil,
	)

	inst := seedInstitution(t, db, "central")
	user := seedUser(t, db, "ana", true)

	for i := 0; i < 20; i++ {
		pet := seedPet(t, db, inst, "Rex", domain.PetStatusAvailable, true)

		var wg sync.WaitGroup
		responses := make([]*swipe.SwipeResponse, 2)
		errs := make([]error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			responses[0], errs[0] = uc.SwipeAsUser(ctx, &swipe.UserSwipeRequest{
				UserID: user, PetID: pet, Decision: domain.DecisionLike,
			})
		}()
		go func() {
			defer wg.Done()
			responses[1], errs[1] = uc.SwipeAsInstitution(ctx, &swipe.InstitutionSwipeRequest{
				InstitutionID: inst, UserID: user, PetID: pet, Decision: domain.DecisionLike,
			})
		}()
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				t.Fatalf("iteration %d: %v", i, err)
			}
		}
		matched := 0
		for _, r := range responses {
			if r.Match {
				matched++
			}
		}
		if matched != 1 {
			t.Fatalf("iteration %d: expected one matching response, got %d", i, matched)
		}

		var rows int
		if err := db.Get(&rows, `SELECT COUNT(*) FROM matches WHERE pet_id = $1`, pet); err != nil {
			t.Fatalf("count matches: %v", err)
		}
		if rows != 1 {
			t.Fatalf("iteration %d: expected 1 match row, got %d", i, rows)
		}
	}
}
