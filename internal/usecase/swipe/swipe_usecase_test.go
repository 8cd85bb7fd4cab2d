package swipe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
	"github.com/thalesfercaetano/Pets-API/internal/repository/cache"
	"github.com/thalesfercaetano/Pets-API/internal/repository/memory"
)

type recorder struct {
	mu      sync.Mutex
	swipes  map[string]int
	matches int
}

func newRecorder() *recorder {
	return &recorder{swipes: make(map[string]int)}
}

func (r *recorder) RecordSwipe(actor, decision string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swipes[actor+":"+decision]++
}

func (r *recorder) RecordMatchCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches++
}

func (r *recorder) RecordCacheResult(bool) {}

type fixture struct {
	store   *memory.Store
	cache   repository.MatchCache
	metrics *recorder
	uc      *SwipeUseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	s.AddInstitution(3, "Abrigo Central")
	s.AddInstitution(4, "Lar dos Gatos")
	s.AddUser(domain.User{ID: 7, Name: "Ana", Email: "ana@example.com", Active: true}, nil)
	s.AddUser(domain.User{ID: 8, Name: "Bruno", Email: "bruno@example.com", Active: true}, nil)
	s.AddPet(domain.PetProfile{ID: 42, Name: "Rex", InstitutionID: 3}, domain.PetStatusAvailable, true)
	s.AddPet(domain.PetProfile{ID: 43, Name: "Mia", InstitutionID: 4}, domain.PetStatusAvailable, true)
	s.AddPet(domain.PetProfile{ID: 44, Name: "Thor", InstitutionID: 3}, "adotado", true)
	s.AddPet(domain.PetProfile{ID: 45, Name: "Luna", InstitutionID: 3}, domain.PetStatusAvailable, false)

	c := cache.NewLocalMatchCache(time.Minute)
	rec := newRecorder()
	return &fixture{
		store:   s,
		cache:   c,
		metrics: rec,
		uc:      NewSwipeUseCase(s, s, s.MatchRepository(), s, c, rec, nil),
	}
}

func (f *fixture) userSwipe(t *testing.T, userID, petID int, d domain.Decision) *SwipeResponse {
	t.Helper()
	resp, err := f.uc.SwipeAsUser(context.Background(), &UserSwipeRequest{UserID: userID, PetID: petID, Decision: d})
	if err != nil {
		t.Fatalf("user swipe (%d, %d, %s): %v", userID, petID, d, err)
	}
	return resp
}

func (f *fixture) institutionSwipe(t *testing.T, institutionID, userID, petID int, d domain.Decision) *SwipeResponse {
	t.Helper()
	resp, err := f.uc.SwipeAsInstitution(context.Background(), &InstitutionSwipeRequest{
		InstitutionID: institutionID,
		UserID:        userID,
		PetID:         petID,
		Decision:      d,
	})
	if err != nil {
		t.Fatalf("institution swipe (%d, %d, %d, %s): %v", institutionID, userID, petID, d, err)
	}
	return resp
}

func TestUserLikeThenInstitutionLikeCreatesMatch(t *testing.T) {
	f := newFixture()

	resp := f.userSwipe(t, 7, 42, domain.DecisionLike)
	if resp.Match || resp.MatchID != nil || resp.Message != MessageLikeWaiting {
		t.Fatalf("unexpected first response: %+v", resp)
	}

	resp = f.institutionSwipe(t, 3, 7, 42, domain.DecisionLike)
	if !resp.Match || resp.MatchID == nil || resp.Message != MessageMatch {
		t.Fatalf("expected match, got %+v", resp)
	}

	matches := f.store.Matches()
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.ID != *resp.MatchID || m.UserID != 7 || m.InstitutionID != 3 || m.PetID != 42 || m.Status != domain.MatchStatusActive {
		t.Fatalf("unexpected match row: %+v", m)
	}
	if f.metrics.matches != 1 || f.metrics.swipes["usuario:like"] != 1 || f.metrics.swipes["instituicao:like"] != 1 {
		t.Fatalf("unexpected metrics: %+v", f.metrics)
	}
}

func TestInstitutionLikeThenUserLikeCreatesMatch(t *testing.T) {
	f := newFixture()

	resp := f.institutionSwipe(t, 3, 7, 42, domain.DecisionLike)
	if resp.Match || resp.Message != MessageLikeWaiting {
		t.Fatalf("unexpected first response: %+v", resp)
	}

	resp = f.userSwipe(t, 7, 42, domain.DecisionLike)
	if !resp.Match || resp.MatchID == nil {
		t.Fatalf("expected match, got %+v", resp)
	}
	if got := f.store.Matches(); len(got) != 1 || got[0].InstitutionID != 3 {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestPassNeverCreatesMatch(t *testing.T) {
	f := newFixture()

	f.institutionSwipe(t, 3, 7, 42, domain.DecisionLike)
	resp := f.userSwipe(t, 7, 42, domain.DecisionPass)
	if resp.Match || resp.Message != MessagePass {
		t.Fatalf("unexpected response: %+v", resp)
	}

	f.userSwipe(t, 8, 43, domain.DecisionLike)
	resp = f.institutionSwipe(t, 4, 8, 43, domain.DecisionPass)
	if resp.Match || resp.Message != MessagePass {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if got := f.store.Matches(); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestUserCannotEvaluatePetTwice(t *testing.T) {
	f := newFixture()
	f.userSwipe(t, 7, 42, domain.DecisionPass)

	for _, d := range []domain.Decision{domain.DecisionLike, domain.DecisionPass} {
		_, err := f.uc.SwipeAsUser(context.Background(), &UserSwipeRequest{UserID: 7, PetID: 42, Decision: d})
		if !errors.Is(err, domain.ErrAlreadyEvaluated) {
			t.Fatalf("expected ErrAlreadyEvaluated, got %v", err)
		}
		if domain.KindOf(err) != domain.KindConflict {
			t.Fatalf("expected conflict kind, got %v", domain.KindOf(err))
		}
	}
	if got := len(f.store.Swipes()); got != 1 {
		t.Fatalf("expected 1 swipe row, got %d", got)
	}
}

func TestUserSwipePreconditions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  UserSwipeRequest
		want error
	}{
		{"missing pet", UserSwipeRequest{UserID: 7, PetID: 999, Decision: domain.DecisionLike}, domain.ErrPetNotFound},
		{"adopted pet", UserSwipeRequest{UserID: 7, PetID: 44, Decision: domain.DecisionLike}, domain.ErrPetUnavailable},
		{"inactive pet", UserSwipeRequest{UserID: 7, PetID: 45, Decision: domain.DecisionLike}, domain.ErrPetUnavailable},
		{"bad decision", UserSwipeRequest{UserID: 7, PetID: 42, Decision: "maybe"}, domain.ErrInvalidDecision},
		{"bad id", UserSwipeRequest{UserID: 0, PetID: 42, Decision: domain.DecisionLike}, domain.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.SwipeAsUser(ctx, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if got := len(f.store.Swipes()); got != 0 {
		t.Fatalf("expected no swipe rows, got %d", got)
	}
}

func TestInstitutionSwipeOnForeignPetIsNotFound(t *testing.T) {
	f := newFixture()

	for _, petID := range []int{43, 999} {
		_, err := f.uc.SwipeAsInstitution(context.Background(), &InstitutionSwipeRequest{
			InstitutionID: 3, UserID: 7, PetID: petID, Decision: domain.DecisionLike,
		})
		if !errors.Is(err, domain.ErrPetNotOwned) {
			t.Fatalf("pet %d: expected ErrPetNotOwned, got %v", petID, err)
		}
	}
	if got := len(f.store.Swipes()); got != 0 {
		t.Fatalf("expected no swipe rows, got %d", got)
	}
}

func TestInstitutionDecidesOncePerPet(t *testing.T) {
	f := newFixture()
	f.institutionSwipe(t, 3, 7, 42, domain.DecisionPass)

	// A second user is still blocked: the decision is per (institution, pet).
	_, err := f.uc.SwipeAsInstitution(context.Background(), &InstitutionSwipeRequest{
		InstitutionID: 3, UserID: 8, PetID: 42, Decision: domain.DecisionLike,
	})
	if !errors.Is(err, domain.ErrInstitutionAlreadyEvaluated) {
		t.Fatalf("expected ErrInstitutionAlreadyEvaluated, got %v", err)
	}

	swipes := f.store.Swipes()
	if len(swipes) != 1 || swipes[0].UserID != nil || swipes[0].InstitutionID == nil || *swipes[0].InstitutionID != 3 {
		t.Fatalf("unexpected ledger: %+v", swipes)
	}
}

func TestMatchInvalidatesListingCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_ = f.cache.SetUserMatches(ctx, 7, 0, []*domain.MatchDetail{})
	_ = f.cache.SetInstitutionMatches(ctx, 3, 0, []*domain.MatchDetail{})

	f.userSwipe(t, 7, 42, domain.DecisionLike)
	if _, _, ok, _ := f.cache.GetUserMatches(ctx, 7); !ok {
		t.Fatal("a like without match must not touch the cache")
	}

	f.institutionSwipe(t, 3, 7, 42, domain.DecisionLike)
	if _, _, ok, _ := f.cache.GetUserMatches(ctx, 7); ok {
		t.Fatal("expected user listing to be invalidated")
	}
	if _, _, ok, _ := f.cache.GetInstitutionMatches(ctx, 3); ok {
		t.Fatal("expected institution listing to be invalidated")
	}
}

func TestConcurrentOppositeLikesCreateExactlyOneMatch(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture()
		ctx := context.Background()

		var wg sync.WaitGroup
		responses := make([]*SwipeResponse, 2)
		errs := make([]error, 2)

		wg.Add(2)
		go func() {
			defer wg.Done()
			responses[0], errs[0] = f.uc.SwipeAsUser(ctx, &UserSwipeRequest{UserID: 7, PetID: 42, Decision: domain.DecisionLike})
		}()
		go func() {
			defer wg.Done()
			responses[1], errs[1] = f.uc.SwipeAsInstitution(ctx, &InstitutionSwipeRequest{
				InstitutionID: 3, UserID: 7, PetID: 42, Decision: domain.DecisionLike,
			})
		}()
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				t.Fatalf("iteration %d: unexpected error: %v", i, err)
			}
		}

		matched := 0
		for _, r := range responses {
			if r.Match {
				matched++
			}
		}
		if matched != 1 {
			t.Fatalf("iteration %d: expected exactly one matching response, got %d", i, matched)
		}
		if got := len(f.store.Matches()); got != 1 {
			t.Fatalf("iteration %d: expected 1 match row, got %d", i, got)
		}
	}
}
