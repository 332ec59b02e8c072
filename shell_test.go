package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"digital-library/library"
)

func newTestManager(t *testing.T) *library.LibraryManager {
	t.Helper()
	mgr, err := library.NewLibraryManager(context.Background(), library.NewMemoryGateway(), library.Options{
		Rand:        library.NewRand(5),
		Now:         func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) },
		CatalogSize: 30,
	})
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func runScript(t *testing.T, mgr *library.LibraryManager, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := newShell(mgr, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	if err := sh.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestShellRequiresLogin(t *testing.T) {
	mgr := newTestManager(t)
	out := runScript(t, mgr, "dashboard", "frobnicate", "exit")
	if !strings.Contains(out, "Please log in first.") {
		t.Fatalf("expected login prompt, got:\n%s", out)
	}
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("expected unknown command message, got:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("expected goodbye, got:\n%s", out)
	}
}

func TestShellLoginAndDashboard(t *testing.T) {
	mgr := newTestManager(t)
	out := runScript(t, mgr,
		"login", "admin", "wrong",
		"login", "admin@digitallibrary.id", "password123",
		"whoami",
		"dashboard",
	)
	if !strings.Contains(out, "Login failed: wrong username/email or password") {
		t.Fatalf("expected failed login, got:\n%s", out)
	}
	if !strings.Contains(out, "Welcome, Administrator!") {
		t.Fatalf("expected welcome, got:\n%s", out)
	}
	if !strings.Contains(out, "Total books:     30") {
		t.Fatalf("expected dashboard counters, got:\n%s", out)
	}
}

func TestShellRegister(t *testing.T) {
	mgr := newTestManager(t)
	out := runScript(t, mgr,
		"register", "", "budi", "budi@example.id", "rahasia", "rahasia",
		"register", "", "budi", "other@example.id", "rahasia", "rahasia",
	)
	if !strings.Contains(out, "Account 'budi' created.") {
		t.Fatalf("expected registration, got:\n%s", out)
	}
	if !strings.Contains(out, "Registration failed: username \"budi\" is already registered") {
		t.Fatalf("expected duplicate failure, got:\n%s", out)
	}
	if n := len(mgr.Accounts()); n != 2 {
		t.Fatalf("want 2 accounts, got %d", n)
	}
}

func TestShellBorrowAndReturn(t *testing.T) {
	mgr := newTestManager(t)
	out := runScript(t, mgr,
		"login", "admin", "password123",
		"borrow", "Kitab Baru", "Penulis", "", "", "2024-01-20", "",
		"borrowed",
		"loan details", "1",
		"return", "1",
		"return", "1",
		"return", "9",
	)
	if !strings.Contains(out, "Loan 1 recorded: 'Kitab Baru' due January 20, 2024.") {
		t.Fatalf("expected loan confirmation, got:\n%s", out)
	}
	if !strings.Contains(out, "Duration: 10 day(s)") {
		t.Fatalf("expected derived duration, got:\n%s", out)
	}
	if !strings.Contains(out, "Return:   January 20, 2024") {
		t.Fatalf("expected planned return date in details, got:\n%s", out)
	}
	if !strings.Contains(out, "Return") || !strings.Contains(out, "2024-01-20   admin") {
		t.Fatalf("expected return column in loan table, got:\n%s", out)
	}
	if !strings.Contains(out, "'Kitab Baru' returned.") {
		t.Fatalf("expected return confirmation, got:\n%s", out)
	}
	if !strings.Contains(out, "Loan 1 was already returned.") {
		t.Fatalf("expected already-returned message, got:\n%s", out)
	}
	if !strings.Contains(out, "Error returning loan: loan 9 not found") {
		t.Fatalf("expected not found message, got:\n%s", out)
	}
}

func TestShellBorrowDerivesReturnDateFromDuration(t *testing.T) {
	mgr := newTestManager(t)
	out := runScript(t, mgr,
		"login", "admin", "password123",
		"borrow", "Kitab Baru", "Penulis", "2024-01-10", "3", "",
		"borrow", "Kitab Lain", "Penulis", "", "nol", "",
	)
	if !strings.Contains(out, "Loan 1 recorded: 'Kitab Baru' due January 13, 2024.") {
		t.Fatalf("expected derived return date, got:\n%s", out)
	}
	if !strings.Contains(out, "Duration must be a whole number of days") {
		t.Fatalf("expected duration error, got:\n%s", out)
	}
	loans := mgr.Loans()
	if len(loans) != 1 {
		t.Fatalf("want 1 loan, got %d", len(loans))
	}
	if loans[0].ReturnDate != "2024-01-13" || loans[0].Duration != 3 || loans[0].Borrower != "admin" {
		t.Fatalf("unexpected loan %+v", loans[0])
	}
}

func TestShellBorrowFromCatalog(t *testing.T) {
	mgr := newTestManager(t)
	var book library.Book
	for _, b := range mgr.Books() {
		if b.Available {
			book = b
			break
		}
	}
	runScript(t, mgr,
		"login", "admin", "password123",
		"borrow from catalog", strconv.Itoa(book.ID), "for class",
	)
	loans := mgr.Loans()
	if len(loans) != 1 {
		t.Fatalf("want 1 loan, got %d", len(loans))
	}
	if loans[0].BookID != book.ID || loans[0].Duration != 7 || loans[0].Notes != "for class" {
		t.Fatalf("unexpected loan %+v", loans[0])
	}
	if b, _ := mgr.GetBook(book.ID); b.Available {
		t.Fatalf("book should be borrowed")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"Pemrograman JavaScript Modern", 15, "Pemrograman ..."},
		{"Ayat-Ayat Cinta", 3, "Aya"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncateString(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
