package domain

import "github.com/google/uuid"

// AnonymousAuthor is the display name of a quotation with no attributed author.
const AnonymousAuthor = "Anonymous"

// Quotation is a single catalog entry. Only Text is required.
// Quotations are never modified after they are loaded.
type Quotation struct {
	// ID identifies the quotation within the catalog.
	ID string

	FirstName string
	LastName  string

	// Bio is a short biography of the author.
	Bio string

	// Source is where the quotation was published or recorded.
	Source string

	// Topic is a free-form subject label, matched alongside Text.
	Topic string

	// Text is the quotation itself.
	Text string
}

// DisplayName joins the author's names with a single space.
// It falls back to the present part, then to AnonymousAuthor, and is never empty.
func (q *Quotation) DisplayName() string {
	switch {
	case q.FirstName != "" && q.LastName != "":
		return q.FirstName + " " + q.LastName
	case q.FirstName != "":
		return q.FirstName
	case q.LastName != "":
		return q.LastName
	default:
		return AnonymousAuthor
	}
}

var quotationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/jsamuelsen/quote-finder/quotation"))

// StableID derives an ID for a quotation that has none. The same text and
// author always give the same ID, so IDs survive reloads.
func StableID(firstName, lastName, text string) string {
	return uuid.NewSHA1(quotationNamespace, []byte(firstName+"\x00"+lastName+"\x00"+text)).String()
}

// Catalog is the ordered, read-only sequence of quotations that searches scan.
type Catalog []*Quotation

// Find returns the quotation with the given ID.
func (c Catalog) Find(id string) (*Quotation, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}

	return nil, false
}

// Index returns the position of the quotation with the given ID, or -1.
func (c Catalog) Index(id string) int {
	for i, q := range c {
		if q.ID == id {
			return i
		}
	}

	return -1
}
