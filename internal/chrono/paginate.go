package chrono

import "strconv"

// Page is one screen of the index.
type Page struct {
	Number int
	Days   []Day
}

// Articles returns how many articles the page shows.
func (p Page) Articles() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Articles)
	}
	return n
}

// Paginate walks the index newest first and closes a page once it holds at
// least perPage articles. Days are never split, so a page can run over.
func Paginate(index Index, perPage int) []Page {
	if perPage < 1 {
		perPage = 1
	}
	var (
		pages []Page
		days  []Day
		count int
	)
	for _, d := range index {
		days = append(days, d)
		count += len(d.Articles)
		if count >= perPage {
			pages = append(pages, Page{Number: len(pages) + 1, Days: days})
			days, count = nil, 0
		}
	}
	if len(days) > 0 {
		pages = append(pages, Page{Number: len(pages) + 1, Days: days})
	}
	return pages
}

// ResolvePage validates a requested page number against the page count.
// When it is out of range, redirect holds where to send the client: the last
// page when there is more than one, the root otherwise. Page 1 of an empty
// index is valid.
func ResolvePage(requested, total int) (page int, redirect string) {
	if requested == 1 && total == 0 {
		return 1, ""
	}
	if requested < 1 || requested > total {
		if total > 1 {
			return total, "/?p=" + strconv.Itoa(total)
		}
		return 1, "/"
	}
	return requested, ""
}
