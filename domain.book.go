package main

// Status reflects the reading state of a catalog entry.
type Status string

const (
	StatusRead      Status = "Read"
	StatusReread    Status = "Reread"
	StatusPending   Status = "Pending"
	StatusAbandoned Status = "Abandoned"
	StatusReading   Status = "Reading"

	// StatusAll is the filtering sentinel which matches every status.
	StatusAll Status = "All"
)

// AllStatuses lists every valid record status, in display order.
var AllStatuses = []Status{StatusRead, StatusReread, StatusPending, StatusAbandoned, StatusReading}

// StockCoverURL is stored on records created without any cover link.
const StockCoverURL = "https://images.unsplash.com/photo-1543004471-2401c3eaa991?q=80&w=1000&auto=format&fit=crop"

// IsValid tells whether the status is one of the known record statuses.
// The `All` sentinel is not a record status.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Book represents one catalog entry. The collection keeps insertion
// order with the newest record first. Ratings go from 0 (unrated) to 5.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      int      `json:"rating"`
	Status      Status   `json:"status"`
	CoverURL    string   `json:"coverUrl"`
	Genres      []string `json:"genres"`
}

// BookDraft is the payload of a record creation. Omitted fields are
// filled with defaults before the record enters the collection.
type BookDraft struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Rating      int      `json:"rating"`
	Status      Status   `json:"status"`
	CoverURL    string   `json:"coverUrl"`
	Genres      []string `json:"genres"`
}

// BookPatch is the payload of a record edition. Pointer fields make an
// absent field distinguishable from a zero value: a present field always
// wins over the stored one, an absent field leaves it untouched.
type BookPatch struct {
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Rating      *int      `json:"rating"`
	Status      *Status   `json:"status"`
	CoverURL    *string   `json:"coverUrl"`
	Genres      *[]string `json:"genres"`
}

// Merge applies the present fields of the patch over the given record
// and returns the result. The record identifier is never touched.
func (p *BookPatch) Merge(book Book) Book {
	if p.Title != nil {
		book.Title = *p.Title
	}
	if p.Author != nil {
		book.Author = *p.Author
	}
	if p.Year != nil {
		book.Year = *p.Year
	}
	if p.Description != nil {
		book.Description = *p.Description
	}
	if p.Rating != nil {
		book.Rating = *p.Rating
	}
	if p.Status != nil {
		book.Status = *p.Status
	}
	if p.CoverURL != nil {
		book.CoverURL = NormalizeCoverURL(*p.CoverURL)
	}
	if p.Genres != nil {
		book.Genres = SanitizeTags(*p.Genres)
	}
	return book
}
