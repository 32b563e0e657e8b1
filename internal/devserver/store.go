// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/ptutor-tui/internal/model"
)

// =============================================================================
// RECORDS
// =============================================================================

// account is an identity plus the backend's user record.
type account struct {
	UID          string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Credits      float64
	Created      time.Time
}

type thread struct {
	owner    string
	messages []model.Message // oldest first
}

// store holds every record. All methods are safe for concurrent use.
type store struct {
	mu  sync.Mutex
	now func() time.Time

	accounts map[string]*account // by uid
	byEmail  map[string]string   // email -> uid
	refresh  map[string]string   // refresh token -> uid

	tutors  map[string]model.Tutor // by tutor id
	owners  map[string]string      // tutor id or module id -> uid
	modules map[string]model.Module
	threads map[string]*thread
	credits map[string][]model.CreditTransaction // by uid
}

func newStore() *store {
	return &store{
		now:      time.Now,
		accounts: map[string]*account{},
		byEmail:  map[string]string{},
		refresh:  map[string]string{},
		tutors:   map[string]model.Tutor{},
		owners:   map[string]string{},
		modules:  map[string]model.Module{},
		threads:  map[string]*thread{},
		credits:  map[string][]model.CreditTransaction{},
	}
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

func (s *store) stamp() model.Timestamp {
	return model.Timestamp{Time: s.now().Truncate(time.Second)}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// createAccount adds an account. It fails with errEmailExists if the
// email is taken.
func (s *store) createAccount(email, password, displayName string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := normEmail(email)
	if _, ok := s.byEmail[key]; ok {
		return nil, errEmailExists
	}
	a := &account{
		UID:          newID("uid"),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		DisplayName:  displayName,
		Created:      s.now(),
	}
	s.accounts[a.UID] = a
	s.byEmail[key] = a.UID
	return a, nil
}

// authenticate checks email and password.
func (s *store) authenticate(email, password string) (*account, error) {
	s.mu.Lock()
	uid, ok := s.byEmail[normEmail(email)]
	var a *account
	if ok {
		a = s.accounts[uid]
	}
	s.mu.Unlock()

	if a == nil {
		return nil, errEmailNotFound
	}
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil {
		return nil, errInvalidPassword
	}
	return a, nil
}

func (s *store) account(uid string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return account{}, false
	}
	return *a, true
}

func (s *store) setDisplayName(uid, name string) (account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return account{}, false
	}
	a.DisplayName = name
	return *a, true
}

func (s *store) issueRefresh(uid string) string {
	tok := newID("rt")
	s.mu.Lock()
	s.refresh[tok] = uid
	s.mu.Unlock()
	return tok
}

func (s *store) redeemRefresh(tok string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[tok]
	return uid, ok
}

// =============================================================================
// TUTORS
// =============================================================================

func (s *store) listTutors(uid string) []model.Tutor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Tutor{}
	for id, t := range s.tutors {
		if s.owners[id] == uid {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Assistant.Created.Before(out[j].Assistant.Created.Time) })
	return out
}

func (s *store) createTutor(uid string, p model.TutorPayload) model.Tutor {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.stamp()
	t := model.Tutor{
		ID:      newID("tutor"),
		Created: now,
		Assistant: model.Assistant{
			ID:           newID("asst"),
			Name:         strings.TrimSpace(p.Name),
			Model:        model.DefaultTutorModel,
			Instructions: p.Instructions,
			Created:      now,
		},
	}
	s.tutors[t.ID] = t
	s.owners[t.ID] = uid
	return t
}

// updateTutor addresses the tutor by its assistant id.
func (s *store) updateTutor(uid, assistantID string, p model.TutorPayload) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tutors {
		if t.Assistant.ID != assistantID || s.owners[id] != uid {
			continue
		}
		t.Assistant.Name = strings.TrimSpace(p.Name)
		t.Assistant.Instructions = p.Instructions
		s.tutors[id] = t
		for mid, m := range s.modules {
			if m.AssistantID == assistantID {
				m.Assistant = t.Assistant
				s.modules[mid] = m
			}
		}
		return true
	}
	return false
}

func (s *store) deleteTutor(uid, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tutors[id]; !ok || s.owners[id] != uid {
		return false
	}
	delete(s.tutors, id)
	delete(s.owners, id)
	return true
}

// assistant finds one of uid's assistants.
func (s *store) assistant(uid, assistantID string) (model.Assistant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tutors {
		if t.Assistant.ID == assistantID && s.owners[id] == uid {
			return t.Assistant, true
		}
	}
	return model.Assistant{}, false
}

// =============================================================================
// MODULES & THREADS
// =============================================================================

func (s *store) listModules(uid string) []model.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Module{}
	for id, m := range s.modules {
		if s.owners[id] == uid {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created.Time) })
	return out
}

func (s *store) createModule(uid string, p model.ModulePayload, a model.Assistant) model.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.Module{
		ID:          newID("mod"),
		Name:        strings.TrimSpace(p.Name),
		AssistantID: a.ID,
		ThreadID:    newID("thread"),
		Created:     s.stamp(),
		Assistant:   a,
	}
	s.modules[m.ID] = m
	s.owners[m.ID] = uid
	s.threads[m.ThreadID] = &thread{owner: uid}
	return m
}

func (s *store) updateModule(uid, id string, p model.ModulePayload, a model.Assistant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[id]
	if !ok || s.owners[id] != uid {
		return false
	}
	m.Name = strings.TrimSpace(p.Name)
	m.AssistantID = a.ID
	m.Assistant = a
	s.modules[id] = m
	return true
}

func (s *store) deleteModule(uid, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[id]
	if !ok || s.owners[id] != uid {
		return false
	}
	delete(s.modules, id)
	delete(s.owners, id)
	delete(s.threads, m.ThreadID)
	return true
}

// messages returns a copy of the thread, oldest first.
func (s *store) messages(uid, threadID string) ([]model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[threadID]
	if !ok || th.owner != uid {
		return nil, false
	}
	return append([]model.Message(nil), th.messages...), true
}

func (s *store) appendMessage(threadID string, role model.Role, text string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.threads[threadID]
	if !ok {
		return model.Message{}, false
	}
	msg := model.NewTextMessage(newID("msg"), role, text, s.now())
	msg.ThreadID = threadID
	th.messages = append(th.messages, msg)
	return msg, true
}

// =============================================================================
// CREDITS
// =============================================================================

// record appends a ledger entry and moves the balance.
func (s *store) record(uid, kind string, amount float64) model.CreditTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := model.CreditTransaction{
		ID:       newID("cr"),
		Type:     kind,
		Amount:   amount,
		Currency: Currency,
		Created:  s.stamp(),
	}
	s.credits[uid] = append(s.credits[uid], tx)
	if a, ok := s.accounts[uid]; ok {
		a.Credits += tx.SignedAmount()
	}
	return tx
}

func (s *store) ledger(uid string) []model.CreditTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CreditTransaction{}, s.credits[uid]...)
}

func (s *store) summary(uid string) model.CreditSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.CreditSummary{}
	for _, tx := range s.credits[uid] {
		out[tx.Type] += tx.Amount
	}
	return out
}
