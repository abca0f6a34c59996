// Package service holds the domain operations behind the HTTP handlers:
// validation, authorization and orchestration over the repositories.
package service

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps (Number-1)*Size within an int32 offset.
	MaxPageNumber = math.MaxInt32 / MaxPageSize
)

// Page selects a 1-based page of a reverse-chronological listing.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page into range: 1 ≤ Number ≤ MaxPageNumber and
// 1 ≤ Size ≤ MaxPageSize.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Limit() int {
	return p.Normalize().Size
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// TotalPages returns how many pages of p's size hold total items.
func (p Page) TotalPages(total int64) int {
	size := int64(p.Normalize().Size)
	return int((total + size - 1) / size)
}
