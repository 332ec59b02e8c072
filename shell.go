package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"digital-library/library"

	"golang.org/x/term"
)

const catalogPageSize = 20

type shell struct {
	mgr *library.LibraryManager
	in  *bufio.Scanner
	out io.Writer
	// readPassword prompts for a secret. Tests replace it with a plain line read.
	readPassword func(prompt string) (string, error)
}

func newShell(mgr *library.LibraryManager, in io.Reader, out io.Writer) *shell {
	sh := &shell{mgr: mgr, in: bufio.NewScanner(in), out: out}
	sh.readPassword = func(prompt string) (string, error) {
		v, ok := sh.prompt(prompt)
		if !ok {
			return "", io.EOF
		}
		return v, nil
	}
	return sh
}

// terminalPassword masks input when stdin is a terminal and falls back to
// the shell's scanner otherwise.
func terminalPassword(in *os.File, out io.Writer, sc *bufio.Scanner) func(string) (string, error) {
	fd := int(in.Fd())
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !term.IsTerminal(fd) {
			if !sc.Scan() {
				return "", io.EOF
			}
			return strings.TrimSpace(sc.Text()), nil
		}
		bytePassword, err := term.ReadPassword(fd)
		fmt.Fprintln(out) // newline after masked input
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytePassword)), nil
	}
}

func (sh *shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *shell) prompt(label string) (string, bool) {
	sh.printf("%s", label)
	if !sh.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(sh.in.Text()), true
}

func (sh *shell) promptInt(label string) (int, bool) {
	raw, ok := sh.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		sh.printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return n, true
}

func (sh *shell) run(ctx context.Context) error {
	sh.printf("Welcome to the Digital Library!\n")
	sh.printHelp()

	for {
		sh.printf("\n> ")
		if !sh.in.Scan() {
			break
		}
		cmd := strings.TrimSpace(sh.in.Text())

		switch cmd {
		case "":
			continue
		case "login":
			sh.handleLogin()
			continue
		case "register":
			sh.handleRegister(ctx)
			continue
		case "whoami":
			sh.handleWhoami()
			continue
		case "help":
			sh.printHelp()
			continue
		case "exit", "quit":
			sh.printf("Goodbye!\n")
			return nil
		}

		if _, ok := sh.mgr.CurrentAccount(); !ok {
			if isKnownCommand(cmd) {
				sh.printf("Please log in first.\n")
			} else {
				sh.printf("Unknown command. Type 'help' to see the available commands.\n")
			}
			continue
		}

		switch cmd {
		case "logout":
			sh.mgr.Logout()
			sh.printf("Logged out.\n")
		case "dashboard":
			sh.handleDashboard()
		case "catalog":
			sh.handleCatalog()
		case "search book":
			sh.handleSearch()
		case "book details":
			sh.handleBookDetails()
		case "borrow":
			sh.handleBorrow(ctx)
		case "borrow from catalog":
			sh.handleBorrowFromCatalog(ctx)
		case "loans":
			sh.printLoans(sh.mgr.Loans(), "No loans recorded yet.")
		case "borrowed":
			sh.printLoans(sh.mgr.ActiveLoans(), "No books are currently borrowed.")
		case "loan details":
			sh.handleLoanDetails()
		case "return":
			sh.handleReturn(ctx)
		case "recent":
			sh.printLoans(sh.mgr.RecentLoans(library.RecentActivityLimit), "No recent activity.")
		default:
			sh.printf("Unknown command. Type 'help' to see the available commands.\n")
		}
	}
	return sh.in.Err()
}

var commands = []string{
	"logout", "dashboard", "catalog", "search book", "book details", "borrow",
	"borrow from catalog", "loans", "borrowed", "loan details", "return", "recent",
}

func isKnownCommand(cmd string) bool {
	for _, c := range commands {
		if c == cmd {
			return true
		}
	}
	return false
}

func (sh *shell) printHelp() {
	sh.printf("Available commands:\n")
	sh.printf("  Account: login, logout, register, whoami\n")
	sh.printf("  Catalog: catalog, search book, book details\n")
	sh.printf("  Loans: borrow, borrow from catalog, loans, borrowed, loan details, return\n")
	sh.printf("  Overview: dashboard, recent\n")
	sh.printf("  System: help, exit\n")
}

// ------------------ Account ------------------

func (sh *shell) handleLogin() {
	identifier, ok := sh.prompt("Username or email: ")
	if !ok {
		return
	}
	password, err := sh.readPassword("Password: ")
	if err != nil {
		sh.printf("Error reading password: %v\n", err)
		return
	}
	acct, err := sh.mgr.Authenticate(identifier, password)
	if err != nil {
		sh.printf("Login failed: %v\n", err)
		return
	}
	sh.printf("Welcome, %s!\n", acct.DisplayName())
}

func (sh *shell) handleRegister(ctx context.Context) {
	var req library.RegisterRequest
	var ok bool
	if req.FullName, ok = sh.prompt("Full name (optional): "); !ok {
		return
	}
	if req.Username, ok = sh.prompt("Username: "); !ok {
		return
	}
	if req.Email, ok = sh.prompt("Email: "); !ok {
		return
	}
	var err error
	if req.Password, err = sh.readPassword("Password: "); err != nil {
		sh.printf("Error reading password: %v\n", err)
		return
	}
	if req.ConfirmPassword, err = sh.readPassword("Confirm password: "); err != nil {
		sh.printf("Error reading password: %v\n", err)
		return
	}

	acct, err := sh.mgr.Register(ctx, req)
	if err != nil {
		sh.printf("Registration failed: %v\n", err)
		return
	}
	sh.printf("Account '%s' created. You can now log in.\n", acct.Username)
}

func (sh *shell) handleWhoami() {
	acct, ok := sh.mgr.CurrentAccount()
	if !ok {
		sh.printf("Not logged in.\n")
		return
	}
	sh.printf("%s (%s) <%s>\n", acct.DisplayName(), acct.Username, acct.Email)
}

// ------------------ Catalog ------------------

func (sh *shell) handleDashboard() {
	printStats(sh.out, sh.mgr.Stats())
	sh.printf("\nRecent activity:\n")
	sh.printLoans(sh.mgr.RecentLoans(library.RecentActivityLimit), "No recent activity.")
}

func (sh *shell) handleCatalog() {
	books := sh.mgr.Books()
	pages := (len(books) + catalogPageSize - 1) / catalogPageSize
	if pages == 0 {
		sh.printf("The catalog is empty.\n")
		return
	}

	page := 1
	if raw, ok := sh.prompt(fmt.Sprintf("Page 1-%d (Enter for 1): ", pages)); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > pages {
			sh.printf("Invalid page: %s\n", raw)
			return
		}
		page = n
	}
	start := (page - 1) * catalogPageSize
	end := min(start+catalogPageSize, len(books))
	printBooks(sh.out, books[start:end])
	sh.printf("Page %d of %d (%d books)\n", page, pages, len(books))
}

func (sh *shell) handleSearch() {
	query, ok := sh.prompt("Query: ")
	if !ok {
		return
	}
	books := sh.mgr.SearchCatalog(query)
	if len(books) == 0 {
		sh.printf("No books found matching '%s'.\n", query)
		return
	}
	sh.printf("Found %d book(s) matching '%s':\n", len(books), query)
	printBooks(sh.out, books)
}

func (sh *shell) handleBookDetails() {
	id, ok := sh.promptInt("Book ID: ")
	if !ok {
		return
	}
	book, err := sh.mgr.GetBook(id)
	if err != nil {
		sh.printf("Error: %v\n", err)
		return
	}
	status := "Available"
	if !book.Available {
		status = "Borrowed"
	}
	sh.printf("Title:  %s\n", book.Title)
	sh.printf("Author: %s\n", book.Author)
	sh.printf("Year:   %d\n", book.Year)
	sh.printf("Genre:  %s\n", book.Genre)
	sh.printf("Pages:  %d\n", book.Pages)
	sh.printf("Status: %s\n", status)
}

// ------------------ Loans ------------------

func (sh *shell) handleBorrow(ctx context.Context) {
	acct, _ := sh.mgr.CurrentAccount()
	defaultBorrow, defaultReturn, _ := library.DefaultBorrowWindow(sh.mgr.Today())

	req := library.LoanRequest{Borrower: acct.Username}
	var ok bool
	if req.Title, ok = sh.prompt("Title: "); !ok {
		return
	}
	if req.Author, ok = sh.prompt("Author: "); !ok {
		return
	}
	if req.BorrowDate, ok = sh.promptDefault("Borrow date (YYYY-MM-DD)", defaultBorrow); !ok {
		return
	}
	days, ok := sh.prompt("Duration in days (Enter to give a return date): ")
	if !ok {
		return
	}
	if days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 {
			sh.printf("Duration must be a whole number of days, at least 1.\n")
			return
		}
		req.Duration = n
		if req.ReturnDate, err = library.ReturnDateFor(req.BorrowDate, n); err != nil {
			sh.printf("Error recording loan: borrow date must be YYYY-MM-DD\n")
			return
		}
	} else {
		if req.ReturnDate, ok = sh.promptDefault("Return date (YYYY-MM-DD)", defaultReturn); !ok {
			return
		}
		if d, err := library.DurationBetween(req.BorrowDate, req.ReturnDate); err == nil {
			req.Duration = d
		}
	}
	if req.Notes, ok = sh.prompt("Notes (optional): "); !ok {
		return
	}
	sh.openLoan(ctx, req)
}

func (sh *shell) handleBorrowFromCatalog(ctx context.Context) {
	acct, _ := sh.mgr.CurrentAccount()
	id, ok := sh.promptInt("Book ID: ")
	if !ok {
		return
	}
	req, err := sh.mgr.BorrowForm(id, acct.Username)
	if err != nil {
		sh.printf("Error: %v\n", err)
		return
	}
	sh.printf("Borrowing '%s' by %s until %s.\n", req.Title, req.Author, library.FormatDate(req.ReturnDate))
	if req.Notes, ok = sh.prompt("Notes (optional): "); !ok {
		return
	}
	sh.openLoan(ctx, req)
}

func (sh *shell) promptDefault(label, def string) (string, bool) {
	v, ok := sh.prompt(fmt.Sprintf("%s [%s]: ", label, def))
	if ok && v == "" {
		v = def
	}
	return v, ok
}

func (sh *shell) openLoan(ctx context.Context, req library.LoanRequest) {
	loan, err := sh.mgr.OpenLoan(ctx, req)
	if err != nil {
		sh.printf("Error recording loan: %v\n", err)
		return
	}
	sh.printf("Loan %d recorded: '%s' due %s.\n", loan.ID, loan.Book, library.FormatDate(loan.ReturnDate))
}

func (sh *shell) handleLoanDetails() {
	id, ok := sh.promptInt("Loan ID: ")
	if !ok {
		return
	}
	d, err := sh.mgr.LoanDetails(id)
	if err != nil {
		sh.printf("Error: %v\n", err)
		return
	}
	sh.printf("Book:     %s\n", d.Loan.Book)
	sh.printf("Author:   %s\n", d.Loan.Author)
	sh.printf("Borrower: %s\n", d.Loan.Borrower)
	sh.printf("Borrowed: %s\n", library.FormatDate(d.Loan.Date))
	sh.printf("Duration: %d day(s)\n", d.Loan.Duration)
	sh.printf("Due:      %s\n", library.FormatDate(d.DueDate))
	sh.printf("Return:   %s\n", library.FormatDate(d.Loan.ReturnDate))
	sh.printf("Status:   %s\n", d.Status)
	if d.Loan.Notes != "" {
		sh.printf("Notes:    %s\n", d.Loan.Notes)
	}
}

func (sh *shell) handleReturn(ctx context.Context) {
	id, ok := sh.promptInt("Loan ID: ")
	if !ok {
		return
	}
	loan, err := sh.mgr.CloseLoan(ctx, id)
	if errors.Is(err, library.ErrAlreadyReturned) {
		sh.printf("Loan %d was already returned.\n", id)
		return
	}
	if err != nil {
		sh.printf("Error returning loan: %v\n", err)
		return
	}
	sh.printf("'%s' returned. Thank you!\n", loan.Book)
}

func (sh *shell) printLoans(loans []library.Loan, empty string) {
	if len(loans) == 0 {
		sh.printf("%s\n", empty)
		return
	}
	today := sh.mgr.Today()
	sh.printf("%-5s %-30s %-20s %-12s %-12s %-12s %-12s %-8s\n", "ID", "Book", "Author", "Borrowed", "Due", "Return", "Borrower", "Status")
	sh.printf("%s\n", strings.Repeat("-", 128))
	for _, l := range loans {
		due := "-"
		if d, err := library.ComputeDueDate(l); err == nil {
			due = d.Format(library.DateLayout)
		}
		sh.printf("%-5d %-30s %-20s %-12s %-12s %-12s %-12s %-8s\n",
			l.ID,
			truncateString(l.Book, 30),
			truncateString(l.Author, 20),
			l.Date,
			due,
			l.ReturnDate,
			truncateString(l.Borrower, 12),
			library.ComputeStatus(l, today))
	}
}

func printBooks(w io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	fmt.Fprintf(w, "%-5s %-35s %-25s %-6s %-12s %-10s\n", "ID", "Title", "Author", "Year", "Genre", "Available")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, b := range books {
		fmt.Fprintln(w, library.PrettyBook(b))
	}
}

func printStats(w io.Writer, s library.DashboardStats) {
	fmt.Fprintf(w, "Total books:     %d\n", s.TotalBooks)
	fmt.Fprintf(w, "Active loans:    %d\n", s.ActiveLoans)
	fmt.Fprintf(w, "Pending returns: %d\n", s.PendingReturns)
	fmt.Fprintf(w, "Overdue loans:   %d\n", s.OverdueLoans)
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}
