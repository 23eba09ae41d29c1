// internal/circulation/implementation_test.go
package circulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
	"librekeep/internal/store"
)

func setupService(t *testing.T) (Service, *store.Store) {
	t.Helper()
	st := store.NewMemory()
	svc := NewService(st, nil, Options{})
	return svc, st
}

func seedBook(t *testing.T, st *store.Store, title string) primitive.ObjectID {
	t.Helper()
	id, err := st.Books.Insert(context.Background(), &models.Book{
		Title:    title,
		Category: "Fiction",
		Price:    9.99,
	})
	require.NoError(t, err)
	return id
}

func seedBorrower(t *testing.T, st *store.Store, name string) primitive.ObjectID {
	t.Helper()
	id, err := st.Borrowers.Insert(context.Background(), &models.Borrower{
		BorrowerName:  name,
		BorrowerEmail: name + "@example.com",
	})
	require.NoError(t, err)
	return id
}

func seedMember(t *testing.T, st *store.Store, username string) primitive.ObjectID {
	t.Helper()
	id, err := st.Members.Insert(context.Background(), &models.Member{
		Username:       username,
		Name:           "Test Member",
		Email:          username + "@example.com",
		Role:           models.RoleMember,
		IsActive:       true,
		MembershipDate: time.Now(),
	})
	require.NoError(t, err)
	return id
}

func TestCheckOutAndCheckIn(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "The Left Hand of Darkness")
	borrowerID := seedBorrower(t, st, "ursula")

	receipt, err := svc.CheckOut(ctx, bookID, borrowerID)
	require.NoError(t, err)
	assert.Equal(t, "The Left Hand of Darkness", receipt.Title)

	book, err := st.Books.FindByID(ctx, bookID)
	require.NoError(t, err)
	require.NotNil(t, book.Borrower)
	assert.Equal(t, borrowerID, *book.Borrower)
	require.NotNil(t, book.BorrowedDate)

	borrower, err := st.Borrowers.FindByID(ctx, borrowerID)
	require.NoError(t, err)
	assert.True(t, borrower.Holds(bookID))

	_, err = svc.CheckIn(ctx, bookID, borrowerID)
	require.NoError(t, err)

	book, err = st.Books.FindByID(ctx, bookID)
	require.NoError(t, err)
	assert.Nil(t, book.Borrower)
	assert.Nil(t, book.BorrowedDate)

	borrower, err = st.Borrowers.FindByID(ctx, borrowerID)
	require.NoError(t, err)
	assert.False(t, borrower.Holds(bookID))
}

func TestCheckOutRejectsHeldBook(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Dune")
	first := seedBorrower(t, st, "first")
	second := seedBorrower(t, st, "second")

	_, err := svc.CheckOut(ctx, bookID, first)
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, bookID, second)
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)

	// A member cannot borrow it either while the desk loan is open.
	memberID := seedMember(t, st, "reader")
	_, err = svc.Borrow(ctx, memberID, bookID)
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)
}

func TestCheckOutUnknownIDs(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Known")
	borrowerID := seedBorrower(t, st, "known")

	_, err := svc.CheckOut(ctx, primitive.NewObjectID(), borrowerID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = svc.CheckOut(ctx, bookID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrBorrowerNotFound)
}

func TestCheckInConverges(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Solaris")
	borrowerID := seedBorrower(t, st, "stanislaw")

	_, err := svc.CheckOut(ctx, bookID, borrowerID)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, bookID, borrowerID)
	require.NoError(t, err)

	// A second check-in of the same pair is a no-op, not an error.
	_, err = svc.CheckIn(ctx, bookID, borrowerID)
	require.NoError(t, err)

	borrower, err := st.Borrowers.FindByID(ctx, borrowerID)
	require.NoError(t, err)
	assert.Empty(t, borrower.Books)
}

func TestBorrowSetsDueDate(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Hyperion")
	memberID := seedMember(t, st, "dan")

	receipt, err := svc.Borrow(ctx, memberID, bookID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), receipt.BorrowedDate, time.Minute)
	assert.WithinDuration(t, receipt.BorrowedDate.AddDate(0, 0, DefaultLoanPeriodDays), receipt.DueDate, time.Second)

	member, err := st.Members.FindByID(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, member.BorrowedBooks, 1)
	loan := member.BorrowedBooks[0]
	assert.Equal(t, bookID, loan.Book)
	assert.True(t, loan.Open())

	book, err := st.Books.FindByID(ctx, bookID)
	require.NoError(t, err)
	require.NotNil(t, book.Borrower)
	assert.Equal(t, memberID, *book.Borrower)
}

func TestBorrowEnforcesLoanLimit(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	memberID := seedMember(t, st, "hoarder")
	for i := 0; i < DefaultMaxLoans; i++ {
		bookID := seedBook(t, st, "Volume")
		_, err := svc.Borrow(ctx, memberID, bookID)
		require.NoError(t, err)
	}

	extra := seedBook(t, st, "One Too Many")
	_, err := svc.Borrow(ctx, memberID, extra)
	assert.ErrorIs(t, err, ErrLoanLimit)

	// Returning a book frees a slot.
	member, err := st.Members.FindByID(ctx, memberID)
	require.NoError(t, err)
	_, err = svc.Return(ctx, memberID, member.BorrowedBooks[0].Book)
	require.NoError(t, err)

	_, err = svc.Borrow(ctx, memberID, extra)
	require.NoError(t, err)
}

func TestReturnClosesLoanAndArchives(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Roadside Picnic")
	memberID := seedMember(t, st, "boris")

	_, err := svc.Borrow(ctx, memberID, bookID)
	require.NoError(t, err)

	_, err = svc.Return(ctx, memberID, bookID)
	require.NoError(t, err)

	member, err := st.Members.FindByID(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, member.BorrowedBooks, 1)
	assert.False(t, member.BorrowedBooks[0].Open())
	require.Len(t, member.BorrowingHistory, 1)
	assert.Equal(t, bookID, member.BorrowingHistory[0].Book)

	book, err := st.Books.FindByID(ctx, bookID)
	require.NoError(t, err)
	assert.Nil(t, book.Borrower)

	// The loan is closed, so a second return has nothing to act on.
	_, err = svc.Return(ctx, memberID, bookID)
	assert.ErrorIs(t, err, ErrNoOpenLoan)
}

func TestReturnWithoutLoan(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Unborrowed")
	memberID := seedMember(t, st, "idle")

	_, err := svc.Return(ctx, memberID, bookID)
	assert.ErrorIs(t, err, ErrNoOpenLoan)
}

func TestReturnMissingBookLeavesLoanOpen(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Vanished")
	memberID := seedMember(t, st, "unlucky")

	_, err := svc.Borrow(ctx, memberID, bookID)
	require.NoError(t, err)
	require.NoError(t, st.Books.Delete(ctx, bookID))

	_, err = svc.Return(ctx, memberID, bookID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	member, err := st.Members.FindByID(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, member.CurrentLoans(), 1)
	assert.Nil(t, member.BorrowedBooks[0].ReturnedDate)
	assert.Empty(t, member.BorrowingHistory)
}

func TestCurrentLoansFiltersReturned(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	memberID := seedMember(t, st, "reader")
	kept := seedBook(t, st, "Kept")
	returned := seedBook(t, st, "Returned")

	_, err := svc.Borrow(ctx, memberID, returned)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, memberID, kept)
	require.NoError(t, err)
	_, err = svc.Return(ctx, memberID, returned)
	require.NoError(t, err)

	loans, err := svc.CurrentLoans(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, kept, loans[0].Book)
	assert.Equal(t, StatusBorrowed, loans[0].Status)
}

func TestHistoryTagsAndSorts(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	memberID := seedMember(t, st, "historian")
	first := seedBook(t, st, "First")
	second := seedBook(t, st, "Second")

	// Seed an archived record older than both live loans.
	archived := primitive.NewObjectID()
	member, err := st.Members.FindByID(ctx, memberID)
	require.NoError(t, err)
	past := time.Now().AddDate(0, -1, 0)
	member.BorrowingHistory = append(member.BorrowingHistory, models.HistoryRecord{
		Book:         archived,
		BorrowedDate: past,
		ReturnedDate: past.AddDate(0, 0, 7),
	})
	require.NoError(t, st.Members.Update(ctx, member))

	_, err = svc.Borrow(ctx, memberID, first)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, memberID, second)
	require.NoError(t, err)
	_, err = svc.Return(ctx, memberID, first)
	require.NoError(t, err)

	history, err := svc.History(ctx, memberID)
	require.NoError(t, err)
	// Two live records, one of them now tagged returned, plus the archive
	// copy of the returned loan and the seeded record.
	require.Len(t, history, 4)

	// Sorted most recent borrow first; the seeded archive record is last.
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].BorrowedDate.Before(history[i].BorrowedDate))
	}
	assert.Equal(t, archived, history[len(history)-1].Book)
	assert.Equal(t, StatusReturned, history[len(history)-1].Status)

	statuses := map[primitive.ObjectID]string{}
	for _, entry := range history {
		statuses[entry.Book] = entry.Status
	}
	assert.Equal(t, StatusBorrowed, statuses[second])
	assert.Equal(t, StatusReturned, statuses[first])
}

func TestOverdueListing(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	memberID := seedMember(t, st, "late")
	onTime := seedBook(t, st, "On Time")
	late := seedBook(t, st, "Late")

	_, err := svc.Borrow(ctx, memberID, onTime)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, memberID, late)
	require.NoError(t, err)

	// Backdate one loan past its due date.
	member, err := st.Members.FindByID(ctx, memberID)
	require.NoError(t, err)
	for i, loan := range member.BorrowedBooks {
		if loan.Book == late {
			member.BorrowedBooks[i].BorrowedDate = time.Now().AddDate(0, 0, -30)
			member.BorrowedBooks[i].DueDate = time.Now().AddDate(0, 0, -16)
		}
	}
	require.NoError(t, st.Members.Update(ctx, member))

	overdue, err := svc.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late, overdue[0].Book)
	assert.Equal(t, memberID, overdue[0].MemberID)
	assert.Equal(t, "Test Member", overdue[0].MemberName)
}

func TestBorrowUnknownMember(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	bookID := seedBook(t, st, "Orphan")
	_, err := svc.Borrow(ctx, primitive.NewObjectID(), bookID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
