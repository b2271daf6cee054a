package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
)

type PlayerRepository struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]player.Candidate
	byExternal map[string]int64
}

func NewPlayerRepository(candidates []player.Candidate) *PlayerRepository {
	repo := &PlayerRepository{
		byID:       make(map[int64]player.Candidate, len(candidates)),
		byExternal: make(map[string]int64, len(candidates)),
	}
	for _, item := range candidates {
		repo.byID[item.ID] = item
		if externalID := strings.TrimSpace(item.ExternalID); externalID != "" {
			repo.byExternal[externalID] = item.ID
		}
		if item.ID > repo.nextID {
			repo.nextID = item.ID
		}
	}

	return repo
}

func (r *PlayerRepository) FindLinkByExternalID(_ context.Context, externalID string) (int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternal[strings.TrimSpace(externalID)]
	return id, ok, nil
}

func (r *PlayerRepository) ListActiveCandidates(ctx context.Context) ([]player.Candidate, error) {
	items, _ := r.ListAll(ctx)
	out := items[:0]
	for _, item := range items {
		if item.Active {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *PlayerRepository) ListAll(_ context.Context) ([]player.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Candidate, 0, len(r.byID))
	for _, item := range r.byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, external player.ExternalPlayer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byExternal[external.ExternalID]; ok {
		return id, nil
	}
	r.nextID++
	item := candidateFromExternal(r.nextID, external)
	r.byID[item.ID] = item
	r.byExternal[external.ExternalID] = item.ID
	return item.ID, nil
}

func (r *PlayerRepository) UpdateLinkage(_ context.Context, candidateID int64, external player.ExternalPlayer) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[candidateID]
	if !ok {
		return false, nil
	}
	if owner, taken := r.byExternal[external.ExternalID]; taken && owner != candidateID {
		return false, fmt.Errorf("external id %s already linked to roster player %d", external.ExternalID, owner)
	}
	if current.ExternalID != "" && current.ExternalID != external.ExternalID {
		delete(r.byExternal, current.ExternalID)
	}

	current.ExternalID = external.ExternalID
	if team := strings.TrimSpace(external.TeamAbbreviation); team != "" {
		current.TeamAbbreviation = team
	}
	if position := strings.TrimSpace(external.Position); position != "" {
		current.Position = position
	}
	current.Active = external.Active
	r.byID[candidateID] = current
	r.byExternal[external.ExternalID] = candidateID
	return true, nil
}

func (r *PlayerRepository) LinkExternalID(_ context.Context, candidateID int64, externalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[candidateID]
	if !ok {
		return false, nil
	}
	if previous, taken := r.byExternal[externalID]; taken && previous != candidateID {
		other := r.byID[previous]
		other.ExternalID = ""
		r.byID[previous] = other
	}
	if current.ExternalID != "" {
		delete(r.byExternal, current.ExternalID)
	}
	current.ExternalID = externalID
	r.byID[candidateID] = current
	r.byExternal[externalID] = candidateID
	return true, nil
}

func candidateFromExternal(id int64, external player.ExternalPlayer) player.Candidate {
	firstName := strings.TrimSpace(external.FirstName)
	lastName := strings.TrimSpace(external.LastName)
	if firstName == "" && lastName == "" {
		parts := strings.Fields(external.DisplayName)
		if len(parts) > 0 {
			firstName = parts[0]
			lastName = strings.Join(parts[1:], " ")
		}
	}
	return player.Candidate{
		ID:               id,
		ExternalID:       external.ExternalID,
		FirstName:        firstName,
		LastName:         lastName,
		TeamAbbreviation: strings.TrimSpace(external.TeamAbbreviation),
		Position:         strings.TrimSpace(external.Position),
		Active:           external.Active,
	}
}
