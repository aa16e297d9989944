package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func pageLimit(limit, fallback int) uint64 {
	if limit <= 0 {
		return uint64(fallback)
	}
	if limit > 500 {
		return 500
	}
	return uint64(limit)
}

func pageOffset(offset int) uint64 {
	if offset < 0 {
		return 0
	}
	return uint64(offset)
}

func likeTerm(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return "%" + search + "%"
}
