package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
	"github.com/keyxmakerx/canvass/internal/plugins/projects"
	"github.com/keyxmakerx/canvass/internal/widgets/notes"
)

// memStore backs every in-memory repository so joins (author and owner
// names) can be resolved the way SQL would.
type memStore struct {
	mu       sync.Mutex
	users    map[string]auth.User
	projects map[string]projects.Project
	members  []projects.ProjectMember
	notes    map[string]notes.Note
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]auth.User{},
		projects: map[string]projects.Project{},
		notes:    map[string]notes.Note{},
	}
}

func (s *memStore) repositories() Repositories {
	return Repositories{
		Users:    memUsers{s},
		Projects: memProjects{s},
		Notes:    memNotes{s},
	}
}

// deleteUser removes a user and cascades like the foreign keys do.
func (s *memStore) deleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	kept := s.members[:0]
	for _, m := range s.members {
		if m.UserID != id {
			kept = append(kept, m)
		}
	}
	s.members = kept
}

func (s *memStore) userIDByEmail(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			return id
		}
	}
	return ""
}

func contains(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}

// --- Users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *auth.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user not found")
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

func (r memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r memUsers) ListExcept(_ context.Context, excludeIDs []string) ([]auth.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	skip := map[string]bool{}
	for _, id := range excludeIDs {
		skip[id] = true
	}
	var out []auth.User
	for id, u := range r.s.users {
		if !skip[id] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Projects ---

type memProjects struct{ s *memStore }

func (r memProjects) Create(_ context.Context, p *projects.Project, members []projects.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.projects[p.ID] = *p
	r.s.members = append(r.s.members, members...)
	return nil
}

func (r memProjects) FindByID(_ context.Context, id string) (*projects.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, apperror.NewNotFound("project not found")
	}
	p.OwnerName = r.s.users[p.OwnerID].Name
	return &p, nil
}

func (r memProjects) ListForUser(_ context.Context, userID, query string) ([]projects.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []projects.Project
	for _, p := range r.s.projects {
		visible := p.OwnerID == userID
		count := 0
		for _, m := range r.s.members {
			if m.ProjectID == p.ID {
				count++
				if m.UserID == userID {
					visible = true
				}
			}
		}
		if !visible || (query != "" && !contains(p.Name, query)) {
			continue
		}
		for _, n := range r.s.notes {
			if n.ProjectID == p.ID {
				p.NoteCount++
			}
		}
		p.MemberCount = count
		p.OwnerName = r.s.users[p.OwnerID].Name
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memProjects) AddMember(_ context.Context, m *projects.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members = append(r.s.members, *m)
	return nil
}

func (r memProjects) RemoveMember(_ context.Context, projectID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.members {
		if m.ProjectID == projectID && m.UserID == userID {
			r.s.members = append(r.s.members[:i], r.s.members[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("member not found")
}

func (r memProjects) FindMember(_ context.Context, projectID, userID string) (*projects.ProjectMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.ProjectID == projectID && m.UserID == userID {
			m := m
			return &m, nil
		}
	}
	return nil, apperror.NewNotFound("member not found")
}

func (r memProjects) ListMembers(_ context.Context, projectID string) ([]projects.ProjectMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []projects.ProjectMember
	for _, m := range r.s.members {
		if m.ProjectID == projectID {
			u := r.s.users[m.UserID]
			m.Name, m.Email = u.Name, u.Email
			out = append(out, m)
		}
	}
	return out, nil
}

// --- Notes ---

type memNotes struct{ s *memStore }

func (r memNotes) Create(_ context.Context, n *notes.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notes[n.ID] = *n
	return nil
}

func (r memNotes) FindByID(_ context.Context, id string) (*notes.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notes[id]
	if !ok {
		return nil, apperror.NewNotFound("note not found")
	}
	n.AuthorName = r.s.users[n.UserID].Name
	return &n, nil
}

func (r memNotes) Update(_ context.Context, n *notes.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notes[n.ID]; !ok {
		return apperror.NewNotFound("note not found")
	}
	r.s.notes[n.ID] = *n
	return nil
}

func (r memNotes) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notes[id]; !ok {
		return apperror.NewNotFound("note not found")
	}
	delete(r.s.notes, id)
	return nil
}

func (r memNotes) ListByProject(_ context.Context, projectID, query string) ([]notes.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []notes.Note
	for _, n := range r.s.notes {
		if n.ProjectID != projectID {
			continue
		}
		email := ""
		if n.ContactEmail != nil {
			email = *n.ContactEmail
		}
		if query != "" && !contains(n.ContactName, query) && !contains(email, query) && !contains(n.Notes, query) {
			continue
		}
		n.AuthorName = r.s.users[n.UserID].Name
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
