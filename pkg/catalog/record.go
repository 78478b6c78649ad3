// Package catalog defines the artwork data model and the normalization of
// raw artworks API payloads into it.
package catalog

import "strconv"

// Record is one catalog entry. A Record is immutable once fetched.
type Record struct {
	// ID is the unique identifier, the API's integer id rendered in decimal.
	ID string

	// Title is the artwork title.
	Title string

	// Origin is the place of origin.
	Origin string

	// Artist is the attribution text (artist_display).
	Artist string

	// Inscriptions is the inscription text, nil when the API reports none.
	Inscriptions *string

	// DateStart and DateEnd are the production year range, nil when absent.
	DateStart *int
	DateEnd   *int
}

// Page is one fetched batch of records for a 1-based page number.
// A page's contents never change once cached.
type Page struct {
	Number  int
	Records []Record
}

// Len returns the number of records on the page.
func (p Page) Len() int {
	return len(p.Records)
}

// artworkDTO mirrors one element of the listing response's data array.
// Pointer fields keep null and absent distinguishable from zero values.
type artworkDTO struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	PlaceOfOrigin *string `json:"place_of_origin"`
	ArtistDisplay *string `json:"artist_display"`
	Inscriptions  *string `json:"inscriptions"`
	DateStart     *int    `json:"date_start"`
	DateEnd       *int    `json:"date_end"`
}

// paginationDTO mirrors the listing response's pagination metadata.
type paginationDTO struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// ListingResponse is the decoded artworks listing payload.
type ListingResponse struct {
	Pagination paginationDTO `json:"pagination"`
	Data       []artworkDTO  `json:"data"`
}

// Total returns the authoritative total record count from the response.
func (r ListingResponse) Total() int {
	return r.Pagination.Total
}

// ToPage normalizes the response body into a Page for the given page number.
// Optional fields that arrive as null stay nil; they are never collapsed
// into empty strings or zero years.
func (r ListingResponse) ToPage(number int) Page {
	records := make([]Record, 0, len(r.Data))
	for _, a := range r.Data {
		rec := Record{
			ID:           strconv.Itoa(a.ID),
			Title:        a.Title,
			Inscriptions: a.Inscriptions,
			DateStart:    a.DateStart,
			DateEnd:      a.DateEnd,
		}
		if a.PlaceOfOrigin != nil {
			rec.Origin = *a.PlaceOfOrigin
		}
		if a.ArtistDisplay != nil {
			rec.Artist = *a.ArtistDisplay
		}
		records = append(records, rec)
	}
	return Page{Number: number, Records: records}
}
