package wordpress

// Rendered is the WordPress REST representation of a rich-text field.
type Rendered struct {
	Rendered string `json:"rendered"`
	Raw      string `json:"raw,omitempty"`
}

// Post is the read shape returned by the posts endpoint.
type Post struct {
	ID            int      `json:"id"`
	Date          string   `json:"date"`
	DateGMT       string   `json:"date_gmt"`
	Status        string   `json:"status"`
	Link          string   `json:"link"`
	Title         Rendered `json:"title"`
	Content       Rendered `json:"content"`
	Categories    []int    `json:"categories"`
	FeaturedMedia int      `json:"featured_media"`
}

// NewPost is the write shape for creating a post. Zero-valued optional
// fields are omitted from the payload.
type NewPost struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	DateGMT       string `json:"date_gmt,omitempty"`
	Categories    []int  `json:"categories,omitempty"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}

// Category is a taxonomy term as returned by the categories endpoint.
type Category struct {
	ID    int    `json:"id"`
	Count int    `json:"count"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
}

// Media is the subset of the media endpoint response the pipeline needs.
type Media struct {
	ID        int      `json:"id"`
	SourceURL string   `json:"source_url"`
	Title     Rendered `json:"title"`
	MimeType  string   `json:"mime_type"`
}

// apiError is the standard WordPress REST error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}
