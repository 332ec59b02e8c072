package library

// Account is a registered library user. Passwords are kept exactly as entered.
type Account struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// DisplayName prefers the full name and falls back to the username.
func (a Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

// Book represents catalog metadata and current availability.
type Book struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      int    `json:"year"`
	Genre     string `json:"genre"`
	Available bool   `json:"available"`
	Pages     int    `json:"pages"`
}

// LoanStatus is the stored state of a loan record.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// Status is the presentation status derived from a loan and a reference day.
type Status string

const (
	StatusActive   Status = "active"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// Loan is one borrow transaction. Book holds the title as typed by the
// borrower; BookID is set when the title matched a catalog entry at open time.
type Loan struct {
	ID         int        `json:"id"`
	Book       string     `json:"book"`
	Author     string     `json:"author"`
	Date       string     `json:"date"`
	ReturnDate string     `json:"returnDate"`
	Duration   int        `json:"duration"`
	Notes      string     `json:"notes"`
	Status     LoanStatus `json:"status"`
	Borrower   string     `json:"borrower"`
	BookID     int        `json:"bookId,omitempty"`
}

// Returned reports whether the loan has been closed.
func (l Loan) Returned() bool { return l.Status == LoanReturned }

// LoanRequest carries the fields of a borrow form.
type LoanRequest struct {
	Title      string
	Author     string
	BorrowDate string
	ReturnDate string
	Duration   int
	Notes      string
	Borrower   string
	// BookID pins the catalog entry when the form was prefilled from it.
	BookID int
}

// RegisterRequest carries the fields of a registration form.
type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
}

// LoanDetails is the read model behind the loan detail view.
type LoanDetails struct {
	Loan    Loan
	DueDate string
	Status  Status
}

// DashboardStats are the counters shown on the dashboard.
type DashboardStats struct {
	TotalBooks     int
	ActiveLoans    int
	PendingReturns int
	OverdueLoans   int
}
