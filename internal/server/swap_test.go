package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapFixture creates two users each owning one book.
type swapFixture struct {
	store  *SQLiteStore
	u1, u2 *User
	b1, b2 *Book
}

func newSwapFixture(t *testing.T) *swapFixture {
	t.Helper()
	s := tempStore(t)

	u1, err := s.CreateUser("Alice", "alice@example.com", false)
	require.NoError(t, err)
	u2, err := s.CreateUser("Bob", "bob@example.com", false)
	require.NoError(t, err)
	b1, err := s.CreateBook("Dune", "Herbert", &u1.ID)
	require.NoError(t, err)
	b2, err := s.CreateBook("Hyperion", "Simmons", &u2.ID)
	require.NoError(t, err)

	return &swapFixture{store: s, u1: u1, u2: u2, b1: b1, b2: b2}
}

func (f *swapFixture) owner(t *testing.T, bookID string) *string {
	t.Helper()
	b, err := f.store.GetBook(bookID)
	require.NoError(t, err)
	return b.OwnerID
}

func TestProposeThenAccept(t *testing.T) {
	f := newSwapFixture(t)

	view, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, view.Status)
	require.NotNil(t, view.FromUserName)
	assert.Equal(t, "Alice", *view.FromUserName)
	require.NotNil(t, view.ToBookTitle)
	assert.Equal(t, "Hyperion", *view.ToBookTitle)

	// proposing moves no books
	assert.Equal(t, f.u1.ID, *f.owner(t, f.b1.ID))
	assert.Equal(t, f.u2.ID, *f.owner(t, f.b2.ID))

	accepted, err := f.store.AcceptSwap(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)

	b1, err := f.store.GetBook(f.b1.ID)
	require.NoError(t, err)
	b2, err := f.store.GetBook(f.b2.ID)
	require.NoError(t, err)
	assert.Equal(t, f.u2.ID, *b1.OwnerID)
	assert.Equal(t, f.u1.ID, *b2.OwnerID)
	assert.False(t, b1.Available)
	assert.False(t, b2.Available)
	requireInvariant(t, f.store)
}

func TestProposeRequiresOwnership(t *testing.T) {
	f := newSwapFixture(t)

	// offered book not owned by proposer
	_, err := f.store.ProposeSwap(f.u2.ID, f.u1.ID, f.b1.ID, f.b2.ID)
	require.ErrorIs(t, err, ErrInvalidOwnership)

	// requested book not owned by recipient
	_, err = f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b1.ID)
	require.ErrorIs(t, err, ErrInvalidOwnership)

	// library book cannot be offered
	_, err = f.store.ReturnBook(f.b1.ID)
	require.NoError(t, err)
	_, err = f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.ErrorIs(t, err, ErrInvalidOwnership)

	// missing book is a 404, not an ownership failure
	_, err = f.store.ProposeSwap(f.u1.ID, f.u2.ID, "no-such-book", f.b2.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptDetectsOwnershipDrift(t *testing.T) {
	f := newSwapFixture(t)

	view, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.NoError(t, err)

	// offered book returned to the library before resolution
	_, err = f.store.ReturnBook(f.b1.ID)
	require.NoError(t, err)

	_, err = f.store.AcceptSwap(view.ID)
	require.ErrorIs(t, err, ErrOwnershipDrift)

	// nothing moved: b1 stays in the library, b2 stays with Bob,
	// the request is still pending
	assert.Nil(t, f.owner(t, f.b1.ID))
	assert.Equal(t, f.u2.ID, *f.owner(t, f.b2.ID))
	got, err := f.store.swapView(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	requireInvariant(t, f.store)
}

func TestAcceptDriftWhenBookSwappedElsewhere(t *testing.T) {
	f := newSwapFixture(t)

	u3, err := f.store.CreateUser("Cora", "cora@example.com", false)
	require.NoError(t, err)
	b3, err := f.store.CreateBook("Solaris", "Lem", &u3.ID)
	require.NoError(t, err)

	first, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.NoError(t, err)
	second, err := f.store.ProposeSwap(f.u1.ID, u3.ID, f.b1.ID, b3.ID)
	require.NoError(t, err)

	// first accept wins and moves b1 to Bob
	_, err = f.store.AcceptSwap(first.ID)
	require.NoError(t, err)

	// second accept re-validates against committed state and loses
	_, err = f.store.AcceptSwap(second.ID)
	require.ErrorIs(t, err, ErrOwnershipDrift)

	assert.Equal(t, f.u2.ID, *f.owner(t, f.b1.ID))
	assert.Equal(t, u3.ID, *f.owner(t, b3.ID))
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	f := newSwapFixture(t)

	view, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.NoError(t, err)
	_, err = f.store.AcceptSwap(view.ID)
	require.NoError(t, err)

	_, err = f.store.AcceptSwap(view.ID)
	require.ErrorIs(t, err, ErrNotPending)
	_, err = f.store.RejectSwap(view.ID)
	require.ErrorIs(t, err, ErrNotPending)

	// ownership unchanged by the failed transitions
	assert.Equal(t, f.u2.ID, *f.owner(t, f.b1.ID))
	assert.Equal(t, f.u1.ID, *f.owner(t, f.b2.ID))

	_, err = f.store.AcceptSwap("no-such-request")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.store.RejectSwap("no-such-request")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRejectLeavesOwnershipAlone(t *testing.T) {
	f := newSwapFixture(t)

	view, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.NoError(t, err)

	rejected, err := f.store.RejectSwap(view.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)

	assert.Equal(t, f.u1.ID, *f.owner(t, f.b1.ID))
	assert.Equal(t, f.u2.ID, *f.owner(t, f.b2.ID))

	_, err = f.store.AcceptSwap(view.ID)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestIncomingListOrdering(t *testing.T) {
	f := newSwapFixture(t)

	u3, err := f.store.CreateUser("Cora", "cora@example.com", false)
	require.NoError(t, err)
	b3, err := f.store.CreateBook("Solaris", "Lem", &u3.ID)
	require.NoError(t, err)
	b4, err := f.store.CreateBook("Fiasco", "Lem", &f.u1.ID)
	require.NoError(t, err)

	// three requests addressed to Bob
	r1, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, f.b1.ID, f.b2.ID)
	require.NoError(t, err)
	r2, err := f.store.ProposeSwap(u3.ID, f.u2.ID, b3.ID, f.b2.ID)
	require.NoError(t, err)
	r3, err := f.store.ProposeSwap(f.u1.ID, f.u2.ID, b4.ID, f.b2.ID)
	require.NoError(t, err)

	// pin distinct creation times: r1 oldest, r3 newest
	for i, id := range []string{r1.ID, r2.ID, r3.ID} {
		_, err = f.store.db.Exec(`UPDATE swap_requests SET created_at=? WHERE id=?`, int64(1000+i), id)
		require.NoError(t, err)
	}

	// reject the newest; it must sink below the pending ones
	_, err = f.store.RejectSwap(r3.ID)
	require.NoError(t, err)

	views, err := f.store.ListIncomingSwaps(f.u2.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, r2.ID, views[0].ID, "newest pending first")
	assert.Equal(t, r1.ID, views[1].ID)
	assert.Equal(t, r3.ID, views[2].ID, "terminal requests last")

	all, err := f.store.ListAllSwaps()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, r3.ID, all[0].ID, "admin list is plain recency order")
}
