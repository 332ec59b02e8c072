package library

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"
)

// RecentActivityLimit is the number of loans shown as recent activity.
const RecentActivityLimit = 5

// OpenLoan records a new active loan. When the title matches a catalog book
// the book is marked unavailable and its id is kept on the loan.
func (lm *LibraryManager) OpenLoan(ctx context.Context, req LoanRequest) (Loan, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	borrowDate := strings.TrimSpace(req.BorrowDate)
	returnDate := strings.TrimSpace(req.ReturnDate)
	borrower := strings.TrimSpace(req.Borrower)

	if title == "" || author == "" || borrowDate == "" || returnDate == "" {
		return Loan{}, validationf("title, author, borrow date and return date are required")
	}
	if borrower == "" {
		return Loan{}, validationf("borrower is required")
	}
	if _, err := ParseDate(borrowDate); err != nil {
		return Loan{}, &Error{Code: CodeValidation, Message: "borrow date must be YYYY-MM-DD", Cause: err}
	}
	if _, err := ParseDate(returnDate); err != nil {
		return Loan{}, &Error{Code: CodeValidation, Message: "return date must be YYYY-MM-DD", Cause: err}
	}
	if req.Duration < 1 {
		return Loan{}, validationf("loan duration must be at least 1 day")
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	loan := Loan{
		ID:         nextLoanID(lm.loans),
		Book:       title,
		Author:     author,
		Date:       borrowDate,
		ReturnDate: returnDate,
		Duration:   req.Duration,
		Notes:      strings.TrimSpace(req.Notes),
		Status:     LoanActive,
		Borrower:   borrower,
	}

	books := slices.Clone(lm.books)
	i := FindBookByID(books, req.BookID)
	if i < 0 || fold(books[i].Title) != fold(title) {
		i = FindBookByTitle(books, title)
	}
	if i >= 0 {
		books[i].Available = false
		loan.BookID = books[i].ID
	}
	loans := append(slices.Clone(lm.loans), loan)

	if err := lm.persist(ctx, loans, books); err != nil {
		return Loan{}, err
	}
	lm.loans, lm.books = loans, books
	lm.logger.Printf("loan %d opened: %q for %q", loan.ID, loan.Book, loan.Borrower)
	return loan, nil
}

// CloseLoan marks loan id returned and makes its book available again.
// Closing a loan that is already returned fails with ErrAlreadyReturned.
func (lm *LibraryManager) CloseLoan(ctx context.Context, id int) (Loan, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	idx := slices.IndexFunc(lm.loans, func(l Loan) bool { return l.ID == id })
	if idx < 0 {
		return Loan{}, notFoundf("loan %d not found", id)
	}
	if lm.loans[idx].Returned() {
		return Loan{}, &Error{Code: CodeAlreadyReturned, Message: "loan has already been returned"}
	}

	loans := slices.Clone(lm.loans)
	loans[idx].Status = LoanReturned

	books := slices.Clone(lm.books)
	if i := loanBookIndex(books, loans[idx]); i >= 0 {
		books[i].Available = true
	}

	if err := lm.persist(ctx, loans, books); err != nil {
		return Loan{}, err
	}
	lm.loans, lm.books = loans, books
	lm.logger.Printf("loan %d returned: %q", id, loans[idx].Book)
	return loans[idx], nil
}

// GetLoan returns the loan with id or a NOT_FOUND error.
func (lm *LibraryManager) GetLoan(id int) (Loan, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, l := range lm.loans {
		if l.ID == id {
			return l, nil
		}
	}
	return Loan{}, notFoundf("loan %d not found", id)
}

// LoanDetails returns the loan with its due date and derived status.
func (lm *LibraryManager) LoanDetails(id int) (LoanDetails, error) {
	loan, err := lm.GetLoan(id)
	if err != nil {
		return LoanDetails{}, err
	}
	d := LoanDetails{Loan: loan, Status: ComputeStatus(loan, lm.Today())}
	if due, err := ComputeDueDate(loan); err == nil {
		d.DueDate = due.Format(DateLayout)
	}
	return d, nil
}

// ActiveLoans returns the loans that are not returned, in record order.
func (lm *LibraryManager) ActiveLoans() []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return ActiveLoans(lm.loans)
}

// RecentLoans returns up to n loans, newest borrow date first.
func (lm *LibraryManager) RecentLoans(n int) []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return RecentLoans(lm.loans, n)
}

// ------------------ Status rules ------------------

// ComputeDueDate is the borrow date plus the loan duration in days.
func ComputeDueDate(l Loan) (time.Time, error) {
	start, err := ParseDate(l.Date)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, l.Duration), nil
}

// ComputeStatus derives the display status of l on the calendar day today.
// A loan whose date cannot be parsed is never reported overdue.
func ComputeStatus(l Loan, today time.Time) Status {
	if l.Returned() {
		return StatusReturned
	}
	due, err := ComputeDueDate(l)
	if err == nil && due.Before(DateOf(today)) {
		return StatusOverdue
	}
	return StatusActive
}

// CountPendingReturns counts open loans due within [today, today+windowDays].
func CountPendingReturns(loans []Loan, today time.Time, windowDays int) int {
	start := DateOf(today)
	end := start.AddDate(0, 0, windowDays)
	n := 0
	for _, l := range loans {
		if l.Returned() {
			continue
		}
		due, err := ComputeDueDate(l)
		if err != nil {
			continue
		}
		if !due.Before(start) && !due.After(end) {
			n++
		}
	}
	return n
}

// CountOverdue counts open loans due strictly before today.
func CountOverdue(loans []Loan, today time.Time) int {
	n := 0
	for _, l := range loans {
		if ComputeStatus(l, today) == StatusOverdue {
			n++
		}
	}
	return n
}

// ActiveLoans filters out returned loans.
func ActiveLoans(loans []Loan) []Loan {
	var out []Loan
	for _, l := range loans {
		if !l.Returned() {
			out = append(out, l)
		}
	}
	return out
}

// RecentLoans sorts a copy of loans by borrow date, newest first, and keeps n.
func RecentLoans(loans []Loan, n int) []Loan {
	out := slices.Clone(loans)
	slices.SortStableFunc(out, func(a, b Loan) int {
		return cmp.Compare(b.Date, a.Date)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func nextLoanID(loans []Loan) int {
	maxID := 0
	for _, l := range loans {
		maxID = max(maxID, l.ID)
	}
	return maxID + 1
}

// loanBookIndex resolves the catalog entry of a loan, by id when the loan
// carries one and by title for records written before ids were stored.
func loanBookIndex(books []Book, l Loan) int {
	if l.BookID != 0 {
		if i := FindBookByID(books, l.BookID); i >= 0 {
			return i
		}
	}
	return FindBookByTitle(books, l.Book)
}

// BorrowForm prefills a loan request for a catalog book with the default
// one-week window. Only available books can be borrowed from the catalog.
func (lm *LibraryManager) BorrowForm(bookID int, borrower string) (LoanRequest, error) {
	book, err := lm.GetBook(bookID)
	if err != nil {
		return LoanRequest{}, err
	}
	if !book.Available {
		return LoanRequest{}, validationf("%q is currently borrowed", book.Title)
	}
	borrowDate, returnDate, duration := DefaultBorrowWindow(lm.Today())
	return LoanRequest{
		Title:      book.Title,
		Author:     book.Author,
		BorrowDate: borrowDate,
		ReturnDate: returnDate,
		Duration:   duration,
		Borrower:   borrower,
		BookID:     book.ID,
	}, nil
}
