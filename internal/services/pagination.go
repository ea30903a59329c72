package services

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

type Paged[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}
