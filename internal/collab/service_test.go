package collab

import (
	"context"
	"testing"
	"time"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/notify"
	"github.com/srisabarish06/Notoria/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of CollabRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, collab *domain.Collab) error {
	args := m.Called(ctx, collab)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Collab, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collab), args.Error(1)
}

func (m *MockRepository) Find(ctx context.Context, noteID, userID uint64) (*domain.Collab, error) {
	args := m.Called(ctx, noteID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collab), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) ListPendingForUser(ctx context.Context, userID uint64) ([]InviteRow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]InviteRow), args.Error(1)
}

func (m *MockRepository) ListForNote(ctx context.Context, noteID uint64) ([]CollaboratorRow, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CollaboratorRow), args.Error(1)
}

type MockNoteProvider struct {
	mock.Mock
}

func (m *MockNoteProvider) FindByID(ctx context.Context, id uint64) (*domain.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUserByID(id uint64) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserDirectory) GetUserByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// stubNotifier records NotifyUser calls on a channel for async assertions.
type stubNotifier struct {
	notified chan uint64
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{notified: make(chan uint64, 8)}
}

func (n *stubNotifier) Subscribe(noteID uint64, sub notify.Subscriber)               {}
func (n *stubNotifier) Unsubscribe(noteID uint64, sub notify.Subscriber)             {}
func (n *stubNotifier) Publish(noteID uint64, event notify.NoteEvent, excl string)   {}
func (n *stubNotifier) NotifyUser(userID uint64, msg notify.Message) {
	n.notified <- userID
}

type stubInvalidator struct {
	bumped []uint64
}

func (s *stubInvalidator) BumpListVersion(ctx context.Context, userID uint64) {
	s.bumped = append(s.bumped, userID)
}

type collabFixture struct {
	repo        *MockRepository
	notes       *MockNoteProvider
	users       *MockUserDirectory
	notifier    *stubNotifier
	invalidator *stubInvalidator
	pool        *worker.Pool
	service     Service
}

func newFixture() *collabFixture {
	f := &collabFixture{
		repo:        new(MockRepository),
		notes:       new(MockNoteProvider),
		users:       new(MockUserDirectory),
		notifier:    newStubNotifier(),
		invalidator: &stubInvalidator{},
		pool:        worker.NewPool(1),
	}
	f.service = NewService(f.repo, f.notes, f.users, f.notifier, f.invalidator, f.pool)
	return f
}

func TestShareNote_Success(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, Title: "Roadmap", OwnerID: 1}
	invitee := &domain.User{ID: 2, Username: "bob", Email: "bob@example.com"}

	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.users.On("GetUserByEmail", "bob@example.com").Return(invitee, nil)
	f.users.On("GetUserByID", uint64(1)).Return(&domain.User{ID: 1, Username: "alice"}, nil)
	f.repo.On("Find", mock.Anything, uint64(10), uint64(2)).Return(nil, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Collab) bool {
		return c.NoteID == 10 && c.UserID == 2 && c.Status == domain.CollabPending &&
			c.Role == domain.RoleViewer && c.InvitedByID == 1
	})).Return(nil)

	collab, err := f.service.ShareNote(context.Background(), 10, 1, "bob@example.com", domain.RoleViewer)

	assert.NoError(t, err)
	assert.Equal(t, domain.CollabPending, collab.Status)

	// the invitee is notified off the request path
	select {
	case userID := <-f.notifier.notified:
		assert.Equal(t, uint64(2), userID)
	case <-time.After(time.Second):
		t.Fatal("invitee was never notified")
	}
	f.repo.AssertExpectations(t)
}

func TestShareNote_DefaultsToEditor(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	invitee := &domain.User{ID: 2, Email: "bob@example.com"}

	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.users.On("GetUserByEmail", "bob@example.com").Return(invitee, nil)
	f.users.On("GetUserByID", uint64(1)).Return(&domain.User{ID: 1}, nil)
	f.repo.On("Find", mock.Anything, uint64(10), uint64(2)).Return(nil, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	collab, err := f.service.ShareNote(context.Background(), 10, 1, "bob@example.com", "")

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, collab.Role)
}

func TestShareNote_OnlyOwnerCanShare(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)

	_, err := f.service.ShareNote(context.Background(), 10, 99, "bob@example.com", "")

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	// a failed invite performs no write
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShareNote_InviteeNotFound(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.users.On("GetUserByEmail", "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.ShareNote(context.Background(), 10, 1, "ghost@example.com", "")

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShareNote_SelfInviteRejected(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.users.On("GetUserByEmail", "alice@example.com").Return(&domain.User{ID: 1}, nil)

	_, err := f.service.ShareNote(context.Background(), 10, 1, "alice@example.com", "")

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.Status)
}

func TestShareNote_DuplicateInviteConflicts(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	invitee := &domain.User{ID: 2, Email: "bob@example.com"}
	existing := &domain.Collab{ID: 5, NoteID: 10, UserID: 2, Status: domain.CollabDeclined}

	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.users.On("GetUserByEmail", "bob@example.com").Return(invitee, nil)
	f.repo.On("Find", mock.Anything, uint64(10), uint64(2)).Return(existing, nil)

	_, err := f.service.ShareNote(context.Background(), 10, 1, "bob@example.com", "")

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShareNote_RacingDuplicateConflicts(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	invitee := &domain.User{ID: 2, Email: "bob@example.com"}

	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.users.On("GetUserByEmail", "bob@example.com").Return(invitee, nil)
	f.repo.On("Find", mock.Anything, uint64(10), uint64(2)).Return(nil, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := f.service.ShareNote(context.Background(), 10, 1, "bob@example.com", "")

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.Status)
}

func TestRespondToInvite_Accept(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	pending := &domain.Collab{ID: 5, NoteID: 10, UserID: 2, Status: domain.CollabPending}
	f.repo.On("FindByID", mock.Anything, uint64(5)).Return(pending, nil)
	f.repo.On("UpdateStatus", mock.Anything, uint64(5), domain.CollabAccepted).Return(nil)

	collab, err := f.service.RespondToInvite(context.Background(), 5, 2, DecisionAccept)

	assert.NoError(t, err)
	assert.Equal(t, domain.CollabAccepted, collab.Status)
	// cached listings for the invitee are invalidated
	assert.Equal(t, []uint64{2}, f.invalidator.bumped)
}

func TestRespondToInvite_Decline(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	pending := &domain.Collab{ID: 5, NoteID: 10, UserID: 2, Status: domain.CollabPending}
	f.repo.On("FindByID", mock.Anything, uint64(5)).Return(pending, nil)
	f.repo.On("UpdateStatus", mock.Anything, uint64(5), domain.CollabDeclined).Return(nil)

	collab, err := f.service.RespondToInvite(context.Background(), 5, 2, DecisionDecline)

	assert.NoError(t, err)
	assert.Equal(t, domain.CollabDeclined, collab.Status)
	assert.Empty(t, f.invalidator.bumped)
}

func TestRespondToInvite_OnlyInviteeMayRespond(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	pending := &domain.Collab{ID: 5, NoteID: 10, UserID: 2, Status: domain.CollabPending}
	f.repo.On("FindByID", mock.Anything, uint64(5)).Return(pending, nil)

	// neither the note owner nor a stranger may respond
	for _, actor := range []uint64{1, 99} {
		_, err := f.service.RespondToInvite(context.Background(), 5, actor, DecisionAccept)
		var apiErr *errors.APIError
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.Status)
	}
	f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondToInvite_TerminalIsNoOp(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	accepted := &domain.Collab{ID: 5, NoteID: 10, UserID: 2, Status: domain.CollabAccepted}
	f.repo.On("FindByID", mock.Anything, uint64(5)).Return(accepted, nil)

	// declining an already-accepted invite does not flip it back
	collab, err := f.service.RespondToInvite(context.Background(), 5, 2, DecisionDecline)

	assert.NoError(t, err)
	assert.Equal(t, domain.CollabAccepted, collab.Status)
	f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondToInvite_UnknownDecision(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	pending := &domain.Collab{ID: 5, NoteID: 10, UserID: 2, Status: domain.CollabPending}
	f.repo.On("FindByID", mock.Anything, uint64(5)).Return(pending, nil)

	_, err := f.service.RespondToInvite(context.Background(), 5, 2, "maybe")

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestRespondToInvite_NotFound(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	f.repo.On("FindByID", mock.Anything, uint64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.service.RespondToInvite(context.Background(), 404, 2, DecisionAccept)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestListCollaborators_OwnerAndAcceptedOnly(t *testing.T) {
	f := newFixture()
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1, IsPublic: true}
	rows := []CollaboratorRow{{UserID: 2, Username: "bob", Role: domain.RoleEditor, Status: domain.CollabAccepted}}

	f.notes.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("ListForNote", mock.Anything, uint64(10)).Return(rows, nil)

	// owner sees the list
	got, err := f.service.ListCollaborators(context.Background(), 10, 1)
	assert.NoError(t, err)
	assert.Len(t, got, 1)

	// accepted collaborator sees the list
	f.repo.On("Find", mock.Anything, uint64(10), uint64(2)).
		Return(&domain.Collab{NoteID: 10, UserID: 2, Status: domain.CollabAccepted}, nil)
	_, err = f.service.ListCollaborators(context.Background(), 10, 2)
	assert.NoError(t, err)

	// public visibility alone does not expose the list
	f.repo.On("Find", mock.Anything, uint64(10), uint64(99)).Return(nil, nil)
	_, err = f.service.ListCollaborators(context.Background(), 10, 99)
	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}
