// Package memory implements the repository interfaces on process memory.
// It backs the usecase and handler tests; the server always runs on postgres.
package memory

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

var (
	_ repository.TxManager           = (*Store)(nil)
	_ repository.SwipeRepository     = (*Store)(nil)
	_ repository.PetRepository       = (*Store)(nil)
	_ repository.DiscoveryRepository = (*Store)(nil)
	_ repository.MatchRepository     = (*MatchRepository)(nil)
	_ repository.UserRepository      = (*UserRepository)(nil)
)

var errLockOutsideTx = errors.New("pet lock requires a transaction")

type petRecord struct {
	profile domain.PetProfile
	status  string
	active  bool
}

type userRecord struct {
	user  domain.User
	phone *string
}

// Store holds every table the matching core reads or writes.
type Store struct {
	mu sync.Mutex

	users        map[int]*userRecord
	institutions map[int]string
	pets         map[int]*petRecord
	adoptions    map[int]int
	swipes       []domain.Swipe
	matches      []domain.Match

	nextSwipeID int
	nextMatchID int
	now         func() time.Time

	lockMu   sync.Mutex
	petLocks map[int]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int]*userRecord),
		institutions: make(map[int]string),
		pets:         make(map[int]*petRecord),
		adoptions:    make(map[int]int),
		petLocks:     make(map[int]*sync.Mutex),
		now:          time.Now,
	}
}

// SetClock replaces the time source used for new rows and status updates.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) AddInstitution(id int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.institutions[id] = name
}

func (s *Store) AddUser(u domain.User, phone *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &userRecord{user: u, phone: phone}
}

// AddPet registers a pet with its adoption status and active flag.
func (s *Store) AddPet(p domain.PetProfile, status string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pets[p.ID] = &petRecord{profile: p, status: status, active: active}
}

// AddApprovedAdoption counts one approved adoption process for the user.
func (s *Store) AddApprovedAdoption(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adoptions[userID]++
}

// Swipes returns a copy of the swipe ledger.
func (s *Store) Swipes() []domain.Swipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Swipe(nil), s.swipes...)
}

// Matches returns a copy of every stored match.
func (s *Store) Matches() []domain.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Match(nil), s.matches...)
}

type txKey struct{}

type txState struct {
	held []*sync.Mutex
}

// WithinTx runs fn and releases the pet locks it took. Writes are not rolled back.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	state := &txState{}
	defer func() {
		for i := len(state.held) - 1; i >= 0; i-- {
			state.held[i].Unlock()
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, state))
}

func (s *Store) LockPet(ctx context.Context, petID int) error {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return errLockOutsideTx
	}

	s.lockMu.Lock()
	l, ok := s.petLocks[petID]
	if !ok {
		l = &sync.Mutex{}
		s.petLocks[petID] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	state.held = append(state.held, l)
	return nil
}

func (s *Store) ExistsForUser(_ context.Context, userID, petID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSwipe(func(sw *domain.Swipe) bool {
		return sw.UserID != nil && *sw.UserID == userID && sw.PetID == petID
	}), nil
}

func (s *Store) ExistsForInstitution(_ context.Context, institutionID, petID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSwipe(func(sw *domain.Swipe) bool {
		return sw.InstitutionID != nil && *sw.InstitutionID == institutionID && sw.PetID == petID
	}), nil
}

func (s *Store) HasUserLike(_ context.Context, userID, petID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSwipe(func(sw *domain.Swipe) bool {
		return sw.UserID != nil && *sw.UserID == userID && sw.PetID == petID && sw.Decision == domain.DecisionLike
	}), nil
}

func (s *Store) HasInstitutionLike(_ context.Context, institutionID, petID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSwipe(func(sw *domain.Swipe) bool {
		return sw.InstitutionID != nil && *sw.InstitutionID == institutionID && sw.PetID == petID && sw.Decision == domain.DecisionLike
	}), nil
}

// Create appends a swipe, enforcing one swipe per party and pet.
func (s *Store) Create(_ context.Context, swipe *domain.Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	duplicate := s.findSwipe(func(sw *domain.Swipe) bool {
		if sw.PetID != swipe.PetID {
			return false
		}
		if swipe.UserID != nil {
			return sw.UserID != nil && *sw.UserID == *swipe.UserID
		}
		return sw.InstitutionID != nil && swipe.InstitutionID != nil && *sw.InstitutionID == *swipe.InstitutionID
	})
	if duplicate {
		return domain.ErrAlreadyEvaluated
	}

	s.nextSwipeID++
	swipe.ID = s.nextSwipeID
	swipe.CreatedAt = s.now()
	s.swipes = append(s.swipes, *swipe)
	return nil
}

func (s *Store) findSwipe(pred func(*domain.Swipe) bool) bool {
	for i := range s.swipes {
		if pred(&s.swipes[i]) {
			return true
		}
	}
	return false
}

// MatchRepository returns a view of the store as a repository.MatchRepository.
func (s *Store) MatchRepository() *MatchRepository {
	return &MatchRepository{s: s}
}

func (s *Store) GetByID(_ context.Context, id int) (*domain.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return s.pet(p), nil
}

func (s *Store) GetOwnedBy(_ context.Context, id, institutionID int) (*domain.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pets[id]
	if !ok || p.profile.InstitutionID != institutionID {
		return nil, domain.ErrPetNotOwned
	}
	return s.pet(p), nil
}

func (s *Store) pet(p *petRecord) *domain.Pet {
	return &domain.Pet{
		ID:            p.profile.ID,
		InstitutionID: p.profile.InstitutionID,
		AdoptionState: p.status,
		Active:        p.active,
	}
}

func (s *Store) CandidatePets(_ context.Context, userID, limit int) ([]*domain.PetProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.PetProfile, 0)
	for _, p := range s.pets {
		if p.status != domain.PetStatusAvailable || !p.active {
			continue
		}
		petID := p.profile.ID
		swiped := s.findSwipe(func(sw *domain.Swipe) bool {
			return sw.UserID != nil && *sw.UserID == userID && sw.PetID == petID
		})
		if swiped || s.hasActiveMatch(userID, petID) {
			continue
		}

		profile := p.profile
		if name, ok := s.institutions[profile.InstitutionID]; ok {
			profile.InstitutionName = &name
		}
		out = append(out, &profile)
	}

	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) InterestedUsers(_ context.Context, petID, limit int) ([]*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool)
	out := make([]*domain.UserProfile, 0)
	for _, sw := range s.swipes {
		if sw.UserID == nil || sw.PetID != petID || sw.Decision != domain.DecisionLike {
			continue
		}
		userID := *sw.UserID
		if seen[userID] {
			continue
		}
		seen[userID] = true

		u, ok := s.users[userID]
		if !ok || !u.user.Active || s.hasActiveMatch(userID, petID) {
			continue
		}
		out = append(out, &domain.UserProfile{
			ID:             u.user.ID,
			Name:           u.user.Name,
			Email:          u.user.Email,
			Phone:          u.phone,
			RegisteredAt:   u.user.RegisteredAt,
			AdoptionsCount: s.adoptions[userID],
		})
	}

	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) hasActiveMatch(userID, petID int) bool {
	for _, m := range s.matches {
		if m.UserID == userID && m.PetID == petID && m.Status == domain.MatchStatusActive {
			return true
		}
	}
	return false
}

// Users returns a view of the store as a repository.UserRepository.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.user.Email, email) {
			user := u.user
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := u.user
	return &user, nil
}

type MatchRepository struct {
	s *Store
}

func (r *MatchRepository) Create(_ context.Context, match *domain.Match) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if m.UserID == match.UserID && m.PetID == match.PetID {
			*match = m
			return false, nil
		}
	}

	s.nextMatchID++
	now := s.now()
	match.ID = s.nextMatchID
	match.CreatedAt = now
	match.LastInteraction = now
	s.matches = append(s.matches, *match)
	return true, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int, scope domain.MatchScope) (*domain.MatchDetail, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.matches {
		if m.ID != id {
			continue
		}
		d := s.detail(m)
		if !scope.Allows(d) {
			break
		}
		return d, nil
	}
	return nil, domain.ErrMatchNotFound
}

func (r *MatchRepository) ListActiveByUser(_ context.Context, userID int) ([]*domain.MatchDetail, error) {
	return r.listActive(func(m *domain.Match) bool { return m.UserID == userID }), nil
}

func (r *MatchRepository) ListActiveByInstitution(_ context.Context, institutionID int) ([]*domain.MatchDetail, error) {
	return r.listActive(func(m *domain.Match) bool { return m.InstitutionID == institutionID }), nil
}

func (r *MatchRepository) listActive(pred func(*domain.Match) bool) []*domain.MatchDetail {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.MatchDetail, 0)
	for i := range s.matches {
		m := &s.matches[i]
		if m.Status == domain.MatchStatusActive && pred(m) {
			out = append(out, s.detail(*m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastInteraction.Equal(out[j].LastInteraction) {
			return out[i].LastInteraction.After(out[j].LastInteraction)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *MatchRepository) UpdateStatus(_ context.Context, id int, status domain.MatchStatus, scope domain.MatchScope) (*domain.Match, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.matches {
		m := &s.matches[i]
		if m.ID != id {
			continue
		}
		if !scope.Allows(&domain.MatchDetail{UserID: m.UserID, InstitutionID: m.InstitutionID}) {
			break
		}
		m.Status = status
		m.LastInteraction = s.now()
		updated := *m
		return &updated, nil
	}
	return nil, domain.ErrMatchNotFound
}

func (s *Store) detail(m domain.Match) *domain.MatchDetail {
	d := &domain.MatchDetail{
		ID:              m.ID,
		UserID:          m.UserID,
		InstitutionID:   m.InstitutionID,
		PetID:           m.PetID,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
		LastInteraction: m.LastInteraction,
	}
	if u, ok := s.users[m.UserID]; ok {
		name, email := u.user.Name, u.user.Email
		d.UserName, d.UserEmail = &name, &email
	}
	if name, ok := s.institutions[m.InstitutionID]; ok {
		d.InstitutionName = &name
	}
	if p, ok := s.pets[m.PetID]; ok {
		name, species := p.profile.Name, p.profile.Species
		d.PetName, d.PetSpecies = &name, &species
		d.PetBreed, d.PetColor = p.profile.Breed, p.profile.Color
	}
	return d
}
