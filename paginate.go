package blogcatalog

// Paginate slices posts into pages of pageSize and returns page number
// page. A page past the end is empty but still reports TotalPages.
// page and pageSize below 1 are treated as 1.
func Paginate(posts []PostRecord, page, pageSize int) QueryResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(posts)
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	res := QueryResult{
		Posts:      []PostRecord{},
		TotalPages: pages,
		Page:       page,
		Total:      total,
	}
	if page > res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	res.Posts = posts[start:end:end]
	return res
}
