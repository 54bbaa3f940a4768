package app

import (
	"context"
	"errors"
	"sync"

	"ragineer/internal/ai"
	"ragineer/internal/index"
	"ragineer/internal/model"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByID(id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserStore) List() ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) Delete(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeUserStore) Count() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeSessionStore struct {
	sessions map[string]*model.ChatSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.ChatSession)}
}

func (f *fakeSessionStore) Create(session *model.ChatSession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) ListByUserID(userID string) ([]model.ChatSession, error) {
	var out []model.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) GetByIDAndUserID(id, userID string) (*model.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) RecordExchange(id string) error {
	s, ok := f.sessions[id]
	if !ok {
		return errors.New("session missing")
	}
	s.MessageCount += 2
	return nil
}

func (f *fakeSessionStore) DeleteByIDAndUserID(id, userID string) error {
	s, ok := f.sessions[id]
	if ok && s.UserID == userID {
		delete(f.sessions, id)
	}
	return nil
}

func (f *fakeSessionStore) CountByUserID(userID string) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeMessageStore struct {
	messages  []model.ChatMessage
	createErr error
}

func (f *fakeMessageStore) Create(message *model.ChatMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) ListBySessionID(sessionID string) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteBySessionID(sessionID string) error {
	kept := f.messages[:0:0]
	for _, m := range f.messages {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeDocStore struct {
	docs      map[string]*model.Document
	createErr error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]*model.Document)}
}

func (f *fakeDocStore) Create(doc *model.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocStore) GetByID(id string) (*model.Document, error) {
	if d, ok := f.docs[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDocStore) List(docTypes []string) ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		if docTypes == nil {
			out = append(out, *d)
			continue
		}
		for _, t := range docTypes {
			if d.DocType == t {
				out = append(out, *d)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDocStore) Delete(id string) (bool, error) {
	if _, ok := f.docs[id]; !ok {
		return false, nil
	}
	delete(f.docs, id)
	return true, nil
}

func (f *fakeDocStore) Count() (int64, error) {
	return int64(len(f.docs)), nil
}

func (f *fakeDocStore) CountByDocType() (map[string]int64, error) {
	out := make(map[string]int64)
	for _, d := range f.docs {
		out[d.DocType]++
	}
	return out, nil
}

// fakeIndex records calls and serves canned search results.
type fakeIndex struct {
	searchResults []index.Result
	searchErr     error
	addErr        error

	addedDocIDs     []string
	removedDocIDs   []string
	lastSearchQuery string
	lastSearchTypes []string
}

func (f *fakeIndex) AddDocument(_ context.Context, docID, _, _ string, chunks []string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	f.addedDocIDs = append(f.addedDocIDs, docID)
	return len(chunks), nil
}

func (f *fakeIndex) Search(_ context.Context, query string, _ int, allowedDocTypes []string) ([]index.Result, error) {
	f.lastSearchQuery = query
	f.lastSearchTypes = allowedDocTypes
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeIndex) RemoveDocument(_ context.Context, docID string) (int, error) {
	f.removedDocIDs = append(f.removedDocIDs, docID)
	return 1, nil
}

type fakeCompleter struct {
	answer     string
	err        error
	lastPrompt []ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.lastPrompt = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakePublisher struct {
	events []model.UsageEvent
}

func (f *fakePublisher) Publish(_ context.Context, event model.UsageEvent) error {
	f.events = append(f.events, event)
	return nil
}
