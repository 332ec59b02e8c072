package web

import (
	"net/http"
	"strconv"
	"strings"

	"digital-library/library"

	"github.com/go-chi/chi/v5"
)

// page is the data passed to every template.
type page struct {
	Title string
	User  *library.Account
	Error string
	Query string
	Stats library.DashboardStats
	Books []library.Book
	Book  *library.Book
	Loans []loanRow
	Loan  *loanRow
}

// loanRow is a loan with its derived due date and status.
type loanRow struct {
	library.Loan
	DueDate string
	Status  library.Status
}

var errLoginRequired = &library.Error{Code: library.CodeAuthentication, Message: "please log in first"}

func (s *Server) rows(loans []library.Loan) []loanRow {
	today := s.mgr.Today()
	out := make([]loanRow, len(loans))
	for i, l := range loans {
		out[i] = loanRow{Loan: l, Status: library.ComputeStatus(l, today)}
		if due, err := library.ComputeDueDate(l); err == nil {
			out[i].DueDate = due.Format(library.DateLayout)
		}
	}
	return out
}

func pathID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &library.Error{Code: library.CodeValidation, Message: "invalid id " + strconv.Quote(raw), Cause: err}
	}
	return id, nil
}

func (s *Server) requireLogin(w http.ResponseWriter) (library.Account, bool) {
	acct, ok := s.mgr.CurrentAccount()
	if !ok {
		s.renderError(w, errLoginRequired)
	}
	return acct, ok
}

// ------------------ Session ------------------

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := page{Title: "Dashboard"}
	if _, ok := s.mgr.CurrentAccount(); ok {
		data.Stats = s.mgr.Stats()
		data.Loans = s.rows(s.mgr.RecentLoans(library.RecentActivityLimit))
	} else {
		data.Title = "Login"
	}
	s.render(w, http.StatusOK, "dashboard", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, &library.Error{Code: library.CodeValidation, Message: "malformed form", Cause: err})
		return
	}
	if _, err := s.mgr.Authenticate(r.PostForm.Get("username"), r.PostForm.Get("password")); err != nil {
		s.metrics.logins.WithLabelValues("failure").Inc()
		s.renderError(w, err)
		return
	}
	s.metrics.logins.WithLabelValues("success").Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mgr.Logout()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, &library.Error{Code: library.CodeValidation, Message: "malformed form", Cause: err})
		return
	}
	_, err := s.mgr.Register(r.Context(), library.RegisterRequest{
		Username:        r.PostForm.Get("username"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
		FullName:        r.PostForm.Get("fullName"),
	})
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.metrics.registrations.Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ------------------ Catalog ------------------

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	s.render(w, http.StatusOK, "catalog", page{
		Title: "Catalog",
		Query: q,
		Books: s.mgr.SearchCatalog(q),
	})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.renderError(w, err)
		return
	}
	book, err := s.mgr.GetBook(id)
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.render(w, http.StatusOK, "book", page{Title: book.Title, Book: &book})
}

// ------------------ Loans ------------------

func (s *Server) handleLoans(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireLogin(w); !ok {
		return
	}
	s.render(w, http.StatusOK, "loans", page{Title: "Loans", Loans: s.rows(s.mgr.Loans())})
}

func (s *Server) handleActiveLoans(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireLogin(w); !ok {
		return
	}
	s.render(w, http.StatusOK, "loans", page{Title: "Borrowed books", Loans: s.rows(s.mgr.ActiveLoans())})
}

func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireLogin(w); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.renderError(w, err)
		return
	}
	d, err := s.mgr.LoanDetails(id)
	if err != nil {
		s.renderError(w, err)
		return
	}
	row := loanRow{Loan: d.Loan, DueDate: d.DueDate, Status: d.Status}
	s.render(w, http.StatusOK, "loan", page{Title: "Loan #" + strconv.Itoa(id), Loan: &row})
}

// handleOpenLoan records a loan for the current account. A bookId field
// borrows a catalog book for the default window; otherwise the form fields
// describe the loan. A duration without a return date derives the return
// date, and a missing duration is derived from the dates.
func (s *Server) handleOpenLoan(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.requireLogin(w)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, &library.Error{Code: library.CodeValidation, Message: "malformed form", Cause: err})
		return
	}
	form := r.PostForm

	var req library.LoanRequest
	if raw := strings.TrimSpace(form.Get("bookId")); raw != "" {
		bookID, err := strconv.Atoi(raw)
		if err != nil {
			s.renderError(w, &library.Error{Code: library.CodeValidation, Message: "invalid book id", Cause: err})
			return
		}
		if req, err = s.mgr.BorrowForm(bookID, acct.Username); err != nil {
			s.renderError(w, err)
			return
		}
	} else {
		req = library.LoanRequest{
			Title:      form.Get("title"),
			Author:     form.Get("author"),
			BorrowDate: form.Get("borrowDate"),
			ReturnDate: form.Get("returnDate"),
			Borrower:   acct.Username,
		}
		if raw := strings.TrimSpace(form.Get("duration")); raw != "" {
			d, err := strconv.Atoi(raw)
			if err != nil {
				s.renderError(w, &library.Error{Code: library.CodeValidation, Message: "duration must be a whole number of days", Cause: err})
				return
			}
			req.Duration = d
			if strings.TrimSpace(req.ReturnDate) == "" && d >= 1 {
				if ret, err := library.ReturnDateFor(strings.TrimSpace(req.BorrowDate), d); err == nil {
					req.ReturnDate = ret
				}
			}
		} else if d, err := library.DurationBetween(req.BorrowDate, req.ReturnDate); err == nil {
			req.Duration = d
		}
	}
	req.Notes = form.Get("notes")

	loan, err := s.mgr.OpenLoan(r.Context(), req)
	if err != nil {
		s.renderError(w, err)
		return
	}
	s.metrics.loansOpened.Inc()
	http.Redirect(w, r, "/loans/"+strconv.Itoa(loan.ID), http.StatusSeeOther)
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireLogin(w); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.renderError(w, err)
		return
	}
	if _, err := s.mgr.CloseLoan(r.Context(), id); err != nil {
		s.renderError(w, err)
		return
	}
	s.metrics.loansReturned.Inc()
	http.Redirect(w, r, "/loans/"+strconv.Itoa(id), http.StatusSeeOther)
}
