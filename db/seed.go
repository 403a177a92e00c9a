package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaelk046/ComicManager/apperror"
)

// seedGrade is one row of the fixed grade reference table.
type seedGrade struct {
	Abbreviation string
	Name         string
	Value        float64
	Comment      string
}

// grades is the standard ten-point grading scale. The abbreviation set is
// closed: item writes may only reference grades present here.
var grades = []seedGrade{
	{"GM", "Gem Mint", 10.0, "perfect copy"},
	{"MT", "Mint", 9.9, ""},
	{"NM/MT", "Near Mint/Mint", 9.8, ""},
	{"NM+", "Near Mint+", 9.6, ""},
	{"NM", "Near Mint", 9.4, ""},
	{"NM-", "Near Mint-", 9.2, ""},
	{"VF/NM", "Very Fine/Near Mint", 9.0, ""},
	{"VF+", "Very Fine+", 8.5, ""},
	{"VF", "Very Fine", 8.0, ""},
	{"VF-", "Very Fine-", 7.5, ""},
	{"FN+", "Fine+", 6.5, ""},
	{"FN", "Fine", 6.0, ""},
	{"FN-", "Fine-", 5.5, ""},
	{"VG+", "Very Good+", 4.5, ""},
	{"VG", "Very Good", 4.0, ""},
	{"VG-", "Very Good-", 3.5, ""},
	{"GD+", "Good+", 2.5, ""},
	{"GD", "Good", 2.0, "major defects, complete and readable"},
	{"FR", "Fair", 1.0, ""},
	{"PR", "Poor", 0.5, "heavily defaced or incomplete"},
}

// publishers is a starter set; further publishers are created lazily the
// first time an item references an unseen name.
var publishers = []string{
	"Marvel",
	"DC Comics",
	"Image Comics",
	"Dark Horse Comics",
	"IDW Publishing",
	"Boom! Studios",
	"Valiant",
	"Dynamite Entertainment",
}

// SeedReferenceData populates the grade and publisher tables. Inserts are
// idempotent, so calling this on every startup is safe.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, g := range grades {
		var comment *string
		if g.Comment != "" {
			comment = &g.Comment
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO grade (abbreviation, name, value, comment)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (abbreviation) DO NOTHING`,
			g.Abbreviation, g.Name, g.Value, comment)
		if err != nil {
			return apperror.NewDatabaseError("failed to seed grades", err)
		}
	}

	for _, name := range publishers {
		_, err := pool.Exec(ctx,
			`INSERT INTO publisher (name)
			 VALUES ($1)
			 ON CONFLICT ((lower(name))) DO NOTHING`,
			name)
		if err != nil {
			return apperror.NewDatabaseError("failed to seed publishers", err)
		}
	}

	return nil
}
