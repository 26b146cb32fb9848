package neurodb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// StudyID identifies a study. Neurosynth dumps use PubMed IDs, so the
// values are plain integers on the wire.
type StudyID int64

// Dissociation holds the two asymmetric differences between study sets
// A and B. The slices are disjoint by construction, sorted ascending,
// and never nil, so an empty side marshals as [].
type Dissociation struct {
	ANotB []StudyID
	BNotA []StudyID
}

// The set algebra stays in SQL: both sides are deduplicated, the
// anti-joins take the differences, and a single tagged UNION ALL brings
// the result back ordered by tag then study_id.
const dissociateTermsSQL = `
WITH a AS (
    SELECT DISTINCT study_id
    FROM ns.annotations_terms
    WHERE term = $1 AND weight > 0
),
b AS (
    SELECT DISTINCT study_id
    FROM ns.annotations_terms
    WHERE term = $2 AND weight > 0
),
a_not_b AS (
    SELECT study_id FROM a
    WHERE NOT EXISTS (SELECT 1 FROM b WHERE b.study_id = a.study_id)
),
b_not_a AS (
    SELECT study_id FROM b
    WHERE NOT EXISTS (SELECT 1 FROM a WHERE a.study_id = b.study_id)
)
SELECT 'a_not_b' AS kind, study_id FROM a_not_b
UNION ALL
SELECT 'b_not_a' AS kind, study_id FROM b_not_a
ORDER BY 1, 2`

// Peak coordinates are matched after rounding to the nearest
// millimeter on the database side, so "2_-1_0" finds peaks stored at
// (1.8, -1.2, 0.4).
const dissociateLocationsSQL = `
WITH a AS (
    SELECT DISTINCT study_id
    FROM ns.coordinates
    WHERE round(ST_X(geom)) = $1
      AND round(ST_Y(geom)) = $2
      AND round(ST_Z(geom)) = $3
),
b AS (
    SELECT DISTINCT study_id
    FROM ns.coordinates
    WHERE round(ST_X(geom)) = $4
      AND round(ST_Y(geom)) = $5
      AND round(ST_Z(geom)) = $6
),
a_not_b AS (
    SELECT study_id FROM a
    WHERE NOT EXISTS (SELECT 1 FROM b WHERE b.study_id = a.study_id)
),
b_not_a AS (
    SELECT study_id FROM b
    WHERE NOT EXISTS (SELECT 1 FROM a WHERE a.study_id = b.study_id)
)
SELECT 'a_not_b' AS kind, study_id FROM a_not_b
UNION ALL
SELECT 'b_not_a' AS kind, study_id FROM b_not_a
ORDER BY 1, 2`

// DissociateTerms returns the studies annotated with term key a but not
// b, and the reverse. Keys are compared exactly as stored; callers
// build them with CanonicalTermKey. Unknown keys yield empty sides.
func (s *Store) DissociateTerms(ctx context.Context, aKey, bKey string) (*Dissociation, error) {
	start := time.Now()
	d, err := s.dissociate(ctx, dissociateTermsSQL, aKey, bKey)
	s.observe(QueryDissociateTerms, start, err)
	return d, err
}

// DissociateLocations returns the studies reporting a peak at a but not
// at b, and the reverse.
func (s *Store) DissociateLocations(ctx context.Context, a, b Coordinate) (*Dissociation, error) {
	start := time.Now()
	d, err := s.dissociate(ctx, dissociateLocationsSQL, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	s.observe(QueryDissociateLocations, start, err)
	return d, err
}

func (s *Store) dissociate(ctx context.Context, query string, args ...any) (*Dissociation, error) {
	d := &Dissociation{ANotB: []StudyID{}, BNotA: []StudyID{}}
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, setSearchPath); err != nil {
			return fmt.Errorf("set search_path: %w", err)
		}
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("dissociation query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var kind string
			var id StudyID
			if err := rows.Scan(&kind, &id); err != nil {
				return fmt.Errorf("scan dissociation row: %w", err)
			}
			d.add(kind, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// add routes one tagged row into the matching difference. Unknown tags
// cannot come out of the queries above and are dropped.
func (d *Dissociation) add(kind string, id StudyID) {
	switch kind {
	case "a_not_b":
		d.ANotB = append(d.ANotB, id)
	case "b_not_a":
		d.BNotA = append(d.BNotA, id)
	}
}
