package service

import (
	"sync"
	"time"

	"library-backend/internal/models"
	"library-backend/internal/repository"
)

// In-memory repository doubles. They mirror the storage-level behavior
// the services rely on, in particular the uniqueness guarantees the
// partial unique indexes provide in Postgres.

type fakeCredentialRepo struct {
	mu     sync.Mutex
	nextID int64
	byVal  map[string]*models.RefreshToken
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{byVal: make(map[string]*models.RefreshToken)}
}

func (f *fakeCredentialRepo) Create(token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byVal[token.Token]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	token.ID = f.nextID
	cp := *token
	f.byVal[token.Token] = &cp
	return nil
}

func (f *fakeCredentialRepo) Consume(tokenValue string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.byVal[tokenValue]
	if !ok || rt.Consumed {
		return nil, repository.ErrNotFound
	}
	rt.Consumed = true
	rt.UsedAt = time.Now()
	cp := *rt
	return &cp, nil
}

func (f *fakeCredentialRepo) GetByValue(tokenValue string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.byVal[tokenValue]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	user.JoinedAt = time.Now()
	cp := *user
	f.byEmail[user.Email] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByID(id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memberKey struct {
	roleClass models.RoleClass
	uniqueID  string
}

type fakeMemberRepo struct {
	mu       sync.Mutex
	nextID   int64
	byKey    map[memberKey]*models.MemberProfile
	removals *fakeRemovalRepo
}

func newFakeMemberRepo(removals *fakeRemovalRepo) *fakeMemberRepo {
	return &fakeMemberRepo{byKey: make(map[memberKey]*models.MemberProfile), removals: removals}
}

func (f *fakeMemberRepo) GetRef(roleClass models.RoleClass, uniqueID string) (*models.MemberRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byKey[memberKey{roleClass, uniqueID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ref := p.Ref
	return &ref, nil
}

func (f *fakeMemberRepo) GetRefByID(id int64) (*models.MemberRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byKey {
		if p.Ref.ID == id {
			ref := p.Ref
			return &ref, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMemberRepo) GetProfile(ref *models.MemberRef) (*models.MemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byKey[memberKey{ref.RoleClass, ref.UniqueID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Ref = *ref
	return &cp, nil
}

func (f *fakeMemberRepo) Register(input models.RegisterMemberInput) (*models.MemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{input.RoleClass, input.UniqueID}
	if _, ok := f.byKey[key]; ok {
		return nil, repository.ErrDuplicate
	}
	f.nextID++
	profile := &models.MemberProfile{
		Ref: models.MemberRef{
			ID:        f.nextID,
			UniqueID:  input.UniqueID,
			RoleClass: input.RoleClass,
		},
		Name:        input.Name,
		Mobile:      input.Mobile,
		JoinedAt:    time.Now(),
		Grade:       input.Grade,
		Class:       input.Class,
		StaffRoleID: input.StaffRoleID,
	}
	f.byKey[key] = profile
	cp := *profile
	return &cp, nil
}

func (f *fakeMemberRepo) Ban(memberID int64, reason string, actorID int64) (*models.RemovalRecord, error) {
	f.mu.Lock()
	var target *models.MemberProfile
	for _, p := range f.byKey {
		if p.Ref.ID == memberID {
			target = p
			break
		}
	}
	if target == nil {
		f.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if target.Ref.IsRemoved {
		f.mu.Unlock()
		return nil, repository.ErrDuplicate
	}
	target.Ref.IsRemoved = true
	f.mu.Unlock()

	record := &models.RemovalRecord{
		SubjectType: models.RemovalSubjectMember,
		SubjectID:   memberID,
		Reason:      reason,
		RemovedBy:   actorID,
	}
	if err := f.removals.Insert(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (f *fakeMemberRepo) List() ([]models.MemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MemberProfile
	for _, p := range f.byKey {
		out = append(out, *p)
	}
	return out, nil
}

type fakeHoldingRepo struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]*models.Holding
	removals *fakeRemovalRepo
}

func newFakeHoldingRepo(removals *fakeRemovalRepo) *fakeHoldingRepo {
	return &fakeHoldingRepo{byID: make(map[int64]*models.Holding), removals: removals}
}

func (f *fakeHoldingRepo) Create(holding *models.Holding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Mirrors the partial unique index: live serials only.
	for _, h := range f.byID {
		if h.SerialNo == holding.SerialNo && !h.IsRemoved {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	holding.ID = f.nextID
	holding.ReservedAt = time.Now()
	cp := *holding
	f.byID[holding.ID] = &cp
	return nil
}

func (f *fakeHoldingRepo) GetByID(id int64) (*models.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHoldingRepo) GetBySerial(serial string) (*models.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.byID {
		if h.SerialNo == serial && !h.IsRemoved {
			cp := *h
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeHoldingRepo) ListByIssue(issueID int64) ([]models.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Holding
	for _, h := range f.byID {
		if h.IssueID == issueID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (f *fakeHoldingRepo) Remove(serial string, reason string, actorID int64) (*models.RemovalRecord, error) {
	f.mu.Lock()
	var target *models.Holding
	for _, h := range f.byID {
		if h.SerialNo == serial && !h.IsRemoved {
			target = h
			break
		}
	}
	if target == nil {
		// Either absent entirely or already removed.
		removed := false
		for _, h := range f.byID {
			if h.SerialNo == serial {
				removed = true
			}
		}
		f.mu.Unlock()
		if removed {
			return nil, repository.ErrDuplicate
		}
		return nil, repository.ErrNotFound
	}
	target.IsRemoved = true
	id := target.ID
	f.mu.Unlock()

	record := &models.RemovalRecord{
		SubjectType: models.RemovalSubjectHolding,
		SubjectID:   id,
		Reason:      reason,
		RemovedBy:   actorID,
	}
	if err := f.removals.Insert(record); err != nil {
		return nil, err
	}
	return record, nil
}

type fakeReservationRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{byID: make(map[int64]*models.Reservation)}
}

func (f *fakeReservationRepo) Create(reservation *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Mirrors the partial unique indexes on active reservations.
	for _, r := range f.byID {
		if !r.IsReceived && (r.MemberID == reservation.MemberID || r.HoldingID == reservation.HoldingID) {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	reservation.ID = f.nextID
	cp := *reservation
	f.byID[reservation.ID] = &cp
	return nil
}

func (f *fakeReservationRepo) GetByID(id int64) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReservationRepo) GetActiveByMember(memberID int64) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.MemberID == memberID && !r.IsReceived {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReservationRepo) GetActiveByHolding(holdingID int64) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.HoldingID == holdingID && !r.IsReceived {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReservationRepo) Receive(id int64) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok || r.IsReceived {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	r.IsReceived = true
	r.ReceivedAt = &now
	cp := *r
	return &cp, nil
}

func (f *fakeReservationRepo) List() ([]models.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReservationDetail
	for _, r := range f.byID {
		out = append(out, models.ReservationDetail{Reservation: *r})
	}
	return out, nil
}

func (f *fakeReservationRepo) ListOverdue() ([]models.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var out []models.ReservationDetail
	for _, r := range f.byID {
		if r.OverdueAt(now) {
			out = append(out, models.ReservationDetail{Reservation: *r})
		}
	}
	return out, nil
}

// setDueDate backdates a reservation so overdue scenarios don't need to
// wait for real time to pass.
func (f *fakeReservationRepo) setDueDate(id int64, due time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.byID[id]; ok {
		r.DueDate = due
	}
}

type removalKey struct {
	subjectType models.RemovalSubject
	subjectID   int64
}

type fakeRemovalRepo struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[removalKey]*models.RemovalRecord
}

func newFakeRemovalRepo() *fakeRemovalRepo {
	return &fakeRemovalRepo{byKey: make(map[removalKey]*models.RemovalRecord)}
}

func (f *fakeRemovalRepo) Insert(record *models.RemovalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := removalKey{record.SubjectType, record.SubjectID}
	if _, ok := f.byKey[key]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	record.ID = f.nextID
	record.RemovedAt = time.Now()
	cp := *record
	f.byKey[key] = &cp
	return nil
}

func (f *fakeRemovalRepo) List(subjectType models.RemovalSubject) ([]models.RemovalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RemovalRecord
	for _, r := range f.byKey {
		if r.SubjectType == subjectType {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRemovalRepo) GetBySubject(subjectType models.RemovalSubject, subjectID int64) (*models.RemovalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byKey[removalKey{subjectType, subjectID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

type fakeIssueRepo struct {
	mu   sync.Mutex
	byID map[int64]*models.Issue
}

func newFakeIssueRepo(issues ...models.Issue) *fakeIssueRepo {
	f := &fakeIssueRepo{byID: make(map[int64]*models.Issue)}
	for i := range issues {
		cp := issues[i]
		f.byID[cp.ID] = &cp
	}
	return f
}

func (f *fakeIssueRepo) GetByID(id int64) (*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueRepo) List() ([]models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Issue
	for _, issue := range f.byID {
		out = append(out, *issue)
	}
	return out, nil
}
