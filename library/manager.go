package library

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// DefaultAdmin is seeded when no accounts collection exists yet.
var DefaultAdmin = Account{
	Username: "admin",
	Email:    "admin@digitallibrary.id",
	Password: "password123",
	FullName: "Administrator",
}

// DefaultPendingWindowDays is the lookahead used for pending returns.
const DefaultPendingWindowDays = 3

// Options tune a LibraryManager. Zero values select the defaults.
type Options struct {
	// Rand drives catalog generation. Nil means a crypto-seeded source.
	Rand *rand.Rand
	// Now supplies the reference time for status rules.
	Now func() time.Time
	// CatalogSize is the number of books generated on first run.
	// Zero selects DefaultCatalogSize.
	CatalogSize int
	// PendingWindowDays is the pending-return lookahead. Zero selects
	// DefaultPendingWindowDays; config.Load rejects an explicit zero.
	PendingWindowDays int
	Logger            *log.Logger
}

// LibraryManager owns the three collections and the current session. Every
// public method runs under one lock, so callers observe operations one at a
// time.
type LibraryManager struct {
	mu sync.Mutex
	gw Gateway

	accounts []Account
	books    []Book
	loans    []Loan
	current  *Account

	now           func() time.Time
	pendingWindow int
	logger        *log.Logger
}

// NewLibraryManager loads all collections from gw, seeding whatever is missing.
func NewLibraryManager(ctx context.Context, gw Gateway, opts Options) (*LibraryManager, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CatalogSize <= 0 {
		opts.CatalogSize = DefaultCatalogSize
	}
	if opts.PendingWindowDays <= 0 {
		opts.PendingWindowDays = DefaultPendingWindowDays
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Rand == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		opts.Rand = NewRand(seed)
	}

	lm := &LibraryManager{
		gw:            gw,
		now:           opts.Now,
		pendingWindow: opts.PendingWindowDays,
		logger:        opts.Logger,
	}
	if err := lm.bootstrap(ctx, opts); err != nil {
		return nil, err
	}
	return lm, nil
}

func (lm *LibraryManager) bootstrap(ctx context.Context, opts Options) error {
	accounts, found, err := loadCollection[Account](ctx, lm.gw, KeyAccounts)
	if err != nil {
		return err
	}
	if !found {
		accounts = []Account{DefaultAdmin}
		if err := saveCollection(ctx, lm.gw, KeyAccounts, accounts); err != nil {
			return err
		}
		lm.logger.Printf("seeded default account %q", DefaultAdmin.Username)
	}

	books, _, err := loadCollection[Book](ctx, lm.gw, KeyCatalog)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		books = GenerateSeedCatalog(opts.Rand, opts.CatalogSize)
		if err := saveCollection(ctx, lm.gw, KeyCatalog, books); err != nil {
			return err
		}
		lm.logger.Printf("seeded catalog with %d books", len(books))
	}

	loans, _, err := loadCollection[Loan](ctx, lm.gw, KeyLoans)
	if err != nil {
		return err
	}

	lm.accounts, lm.books, lm.loans = accounts, books, loans
	lm.logger.Printf("loaded %d accounts, %d books, %d loans", len(accounts), len(books), len(loans))
	return nil
}

// Close closes the underlying gateway.
func (lm *LibraryManager) Close() error { return lm.gw.Close() }

// Today is the current calendar day as seen by the status rules.
func (lm *LibraryManager) Today() time.Time { return DateOf(lm.now()) }

// PendingWindowDays is the configured pending-return lookahead.
func (lm *LibraryManager) PendingWindowDays() int { return lm.pendingWindow }

// ------------------ Read access ------------------

func (lm *LibraryManager) Accounts() []Account {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return slices.Clone(lm.accounts)
}

func (lm *LibraryManager) Books() []Book {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return slices.Clone(lm.books)
}

func (lm *LibraryManager) Loans() []Loan {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return slices.Clone(lm.loans)
}

// ------------------ Catalog ------------------

// SearchCatalog filters the catalog by term; see SearchCatalog.
func (lm *LibraryManager) SearchCatalog(term string) []Book {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return SearchCatalog(lm.books, term)
}

// FindBookByTitle returns the first book whose title matches ignoring case.
func (lm *LibraryManager) FindBookByTitle(title string) (Book, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if i := FindBookByTitle(lm.books, title); i >= 0 {
		return lm.books[i], true
	}
	return Book{}, false
}

// GetBook returns the book with id or a NOT_FOUND error.
func (lm *LibraryManager) GetBook(id int) (Book, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if i := FindBookByID(lm.books, id); i >= 0 {
		return lm.books[i], nil
	}
	return Book{}, notFoundf("book %d not found", id)
}

// ------------------ Dashboard ------------------

// Stats computes the dashboard counters relative to today.
func (lm *LibraryManager) Stats() DashboardStats {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	today := lm.Today()
	return DashboardStats{
		TotalBooks:     len(lm.books),
		ActiveLoans:    len(ActiveLoans(lm.loans)),
		PendingReturns: CountPendingReturns(lm.loans, today, lm.pendingWindow),
		OverdueLoans:   CountOverdue(lm.loans, today),
	}
}

// persist saves the staged collections in one batch so storage never holds a
// loan change without its catalog change. In-memory state is only replaced by
// the caller after persist succeeds.
func (lm *LibraryManager) persist(ctx context.Context, loans []Loan, books []Book) error {
	var entries []Entry
	if loans != nil {
		e, err := encodeCollection(KeyLoans, loans)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if books != nil {
		e, err := encodeCollection(KeyCatalog, books)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if err := lm.gw.SaveBatch(ctx, entries); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}
