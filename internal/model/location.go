package model

type Location struct {
	ID    int64  `db:"id"`
	Label string `db:"label"`
}
