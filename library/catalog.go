package library

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultCatalogSize is the number of books generated on first run.
const DefaultCatalogSize = 1000

var (
	seedGenres = []string{
		"Fiksi", "Non-Fiksi", "Sains", "Teknologi", "Sejarah",
		"Biografi", "Fantasi", "Misteri", "Romance", "Bisnis",
	}
	seedAuthors = []string{
		"Andrea Hirata", "Pramoedya Ananta Toer", "Dee Lestari", "Tere Liye", "Eka Kurniawan",
		"Ahmad Fuadi", "Habiburrahman El Shirazy", "Asma Nadia", "Leila S. Chudori", "Ayu Utami",
		"Erik Wright", "Sarah Johnson", "Michael Chen", "David Miller", "Lisa Wong",
		"John Smith", "Emily Davis", "Robert Brown", "Jennifer Wilson", "William Taylor",
	}
	seedTitles = []string{
		"Pemrograman JavaScript Modern", "Seni Desain Web", "Algoritma dan Struktur Data",
		"Pengembangan Aplikasi Web", "Machine Learning Dasar", "Dasar-dasar Python",
		"Belajar React dari Nol", "Node.js untuk Pemula", "Database Modern", "Sistem Operasi Lanjut",
		"Laskar Pelangi", "Bumi Manusia", "Perahu Kertas", "Pulang", "Cantik Itu Luka",
		"Negeri 5 Menara", "Ayat-Ayat Cinta", "Assalamualaikum Beijing", "Pudarnya Pesona Cleopatra", "Saman",
		"The Great Gatsby", "To Kill a Mockingbird", "1984", "Pride and Prejudice", "The Catcher in the Rye",
		"Harry Potter", "Lord of the Rings", "The Hobbit", "Game of Thrones", "The Hunger Games",
	}
)

// maxTitleAttempts bounds the retries spent looking for an unused title.
// Duplicates remain possible once it is exhausted.
const maxTitleAttempts = 5

// GenerateSeedCatalog builds count books with ids 1..count. The caller owns
// the random source so a fixed seed reproduces the same catalog.
func GenerateSeedCatalog(r *rand.Rand, count int) []Book {
	books := make([]Book, 0, count)
	used := make(map[string]struct{}, count)

	for i := 1; i <= count; i++ {
		var title string
		for attempts := 0; ; attempts++ {
			base := seedTitles[r.IntN(len(seedTitles))]
			title = base
			if attempts > 0 {
				title = fmt.Sprintf("%s %d", base, i)
			}
			if _, dup := used[title]; !dup || attempts+1 >= maxTitleAttempts {
				break
			}
		}
		used[title] = struct{}{}

		books = append(books, Book{
			ID:        i,
			Title:     title,
			Author:    seedAuthors[r.IntN(len(seedAuthors))],
			Year:      2000 + r.IntN(24),
			Genre:     seedGenres[r.IntN(len(seedGenres))],
			Available: r.Float64() > 0.3,
			Pages:     100 + r.IntN(500),
		})
	}
	return books
}

// fold returns the Unicode case-folded form used for every
// case-insensitive comparison in the catalog.
func fold(s string) string {
	return cases.Fold().String(s)
}

// SearchCatalog returns the books whose title, author or genre contains term,
// ignoring case, in catalog order. An empty term matches everything.
func SearchCatalog(books []Book, term string) []Book {
	if term == "" {
		return append([]Book(nil), books...)
	}
	needle := fold(term)
	var out []Book
	for _, b := range books {
		if strings.Contains(fold(b.Title), needle) ||
			strings.Contains(fold(b.Author), needle) ||
			strings.Contains(fold(b.Genre), needle) {
			out = append(out, b)
		}
	}
	return out
}

// FindBookByTitle returns the index of the first book whose title equals
// title ignoring case, or -1.
func FindBookByTitle(books []Book, title string) int {
	want := fold(title)
	for i, b := range books {
		if fold(b.Title) == want {
			return i
		}
	}
	return -1
}

// FindBookByID returns the index of the book with id, or -1.
func FindBookByID(books []Book, id int) int {
	for i, b := range books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	avail := "Yes"
	if !b.Available {
		avail = "No"
	}
	return fmt.Sprintf("%-5d %-35s %-25s %-6d %-12s %-10s", b.ID,
		truncateString(b.Title, 35), truncateString(b.Author, 25), b.Year, b.Genre, avail)
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
