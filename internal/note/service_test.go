package note

import (
	"context"
	"testing"
	"time"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/notify"
	"github.com/srisabarish06/Notoria/internal/worker"
	appRedis "github.com/srisabarish06/Notoria/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of NoteRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID uint64, note *domain.Note) error {
	args := m.Called(ctx, userID, note)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*domain.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockRepository) ListVisible(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Note, NotesMeta, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(NotesMeta), args.Error(2)
	}
	return args.Get(0).([]domain.Note), args.Get(1).(NotesMeta), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, note *domain.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) GetCollab(ctx context.Context, noteID, userID uint64) (*domain.Collab, error) {
	args := m.Called(ctx, noteID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collab), args.Error(1)
}

// stubNotifier records published note events.
type stubNotifier struct {
	published chan notify.NoteEvent
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{published: make(chan notify.NoteEvent, 8)}
}

func (n *stubNotifier) Subscribe(noteID uint64, sub notify.Subscriber)   {}
func (n *stubNotifier) Unsubscribe(noteID uint64, sub notify.Subscriber) {}
func (n *stubNotifier) Publish(noteID uint64, event notify.NoteEvent, excluding string) {
	n.published <- event
}
func (n *stubNotifier) NotifyUser(userID uint64, msg notify.Message) {}

type noteFixture struct {
	repo     *MockRepository
	notifier *stubNotifier
	pool     *worker.Pool
	service  Service
}

func newFixture(cache *appRedis.Cache) *noteFixture {
	f := &noteFixture{
		repo:     new(MockRepository),
		notifier: newStubNotifier(),
		pool:     worker.NewPool(1),
	}
	f.service = NewService(f.repo, f.notifier, cache, f.pool)
	return f
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestGetNote_OwnerSeesPrivateNote(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, Title: "Private", OwnerID: 1}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)

	got, err := f.service.GetNote(context.Background(), 10, 1)

	assert.NoError(t, err)
	assert.Equal(t, "owner", got.Role)
	assert.True(t, got.CanWrite)
	// the owner's own row is never looked up
	f.repo.AssertNotCalled(t, "GetCollab", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetNote_StrangerDenied(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("GetCollab", mock.Anything, uint64(10), uint64(99)).Return(nil, nil)

	_, err := f.service.GetNote(context.Background(), 10, 99)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestGetNote_AcceptedViewerReadsButCannotWrite(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	collab := &domain.Collab{NoteID: 10, UserID: 2, Role: domain.RoleViewer, Status: domain.CollabAccepted}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("GetCollab", mock.Anything, uint64(10), uint64(2)).Return(collab, nil)

	got, err := f.service.GetNote(context.Background(), 10, 2)

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, got.Role)
	assert.False(t, got.CanWrite)
}

func TestGetNote_PendingInviteConfersNothing(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	collab := &domain.Collab{NoteID: 10, UserID: 2, Role: domain.RoleEditor, Status: domain.CollabPending}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("GetCollab", mock.Anything, uint64(10), uint64(2)).Return(collab, nil)

	_, err := f.service.GetNote(context.Background(), 10, 2)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

func TestUpdateNote_EditorSavesAndBroadcasts(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, Title: "Old", OwnerID: 1}
	collab := &domain.Collab{NoteID: 10, UserID: 2, Role: domain.RoleEditor, Status: domain.CollabAccepted}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("GetCollab", mock.Anything, uint64(10), uint64(2)).Return(collab, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	got, err := f.service.UpdateNote(context.Background(), 10, 2, UpdateNoteInput{Title: strPtr("New")})

	assert.NoError(t, err)
	assert.Equal(t, "New", got.Title)

	select {
	case event := <-f.notifier.published:
		assert.Equal(t, uint64(10), event.NoteID)
		assert.Equal(t, uint64(2), event.UpdatedBy)
		assert.Equal(t, "New", event.Title)
	case <-time.After(time.Second):
		t.Fatal("note change was never broadcast")
	}
}

func TestUpdateNote_ViewerDenied(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	collab := &domain.Collab{NoteID: 10, UserID: 2, Role: domain.RoleViewer, Status: domain.CollabAccepted}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("GetCollab", mock.Anything, uint64(10), uint64(2)).Return(collab, nil)

	_, err := f.service.UpdateNote(context.Background(), 10, 2, UpdateNoteInput{Title: strPtr("New")})

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateNote_VisibilityIsOwnerOnly(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1, IsPublic: false}
	collab := &domain.Collab{NoteID: 10, UserID: 2, Role: domain.RoleEditor, Status: domain.CollabAccepted}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)
	f.repo.On("GetCollab", mock.Anything, uint64(10), uint64(2)).Return(collab, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	// an editor's is_public flag is silently ignored
	got, err := f.service.UpdateNote(context.Background(), 10, 2, UpdateNoteInput{
		Content:  strPtr("body"),
		IsPublic: boolPtr(true),
	})

	assert.NoError(t, err)
	assert.False(t, got.IsPublic)
}

func TestDeleteNote_OnlyOwner(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	note := &domain.Note{ID: 10, OwnerID: 1}
	f.repo.On("FindByID", mock.Anything, uint64(10)).Return(note, nil)

	err := f.service.DeleteNote(context.Background(), 10, 2)

	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCanReadNote_MissingNoteIsFalseNotError(t *testing.T) {
	f := newFixture(nil)
	defer f.pool.Shutdown()

	f.repo.On("FindByID", mock.Anything, uint64(404)).Return(nil, gorm.ErrRecordNotFound)

	ok, err := f.service.CanReadNote(context.Background(), 404, 1)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestListNotes_CachesUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := appRedis.NewCache(client)

	f := newFixture(cache)
	defer f.pool.Shutdown()

	notes := []domain.Note{{ID: 10, Title: "Roadmap", OwnerID: 1}}
	meta := NotesMeta{Total: 1, CurrentPage: 1, PerPage: 10, TotalPage: 1}
	f.repo.On("ListVisible", mock.Anything, uint64(1), 1, 10).Return(notes, meta, nil)

	first, err := f.service.ListNotes(context.Background(), 1, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, first.Data, 1)

	// the listing is written to the cache off the request path
	assert.Eventually(t, func() bool {
		return len(mr.Keys()) >= 1
	}, time.Second, 10*time.Millisecond)

	second, err := f.service.ListNotes(context.Background(), 1, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, second.Data, 1)
	f.repo.AssertNumberOfCalls(t, "ListVisible", 1)

	// bumping the version routes the next read past the stale entry
	f.service.BumpListVersion(context.Background(), 1)
	_, err = f.service.ListNotes(context.Background(), 1, 1, 10)
	assert.NoError(t, err)
	f.repo.AssertNumberOfCalls(t, "ListVisible", 2)
}
