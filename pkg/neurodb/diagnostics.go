package neurodb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// CoordinateSample is one row of ns.coordinates with the PostGIS
// geometry unpacked into its components.
type CoordinateSample struct {
	StudyID StudyID `json:"study_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// AnnotationSample is one row of ns.annotations_terms.
type AnnotationSample struct {
	StudyID    StudyID `json:"study_id"`
	ContrastID string  `json:"contrast_id"`
	Term       string  `json:"term"`
	Weight     float64 `json:"weight"`
}

// Report aggregates connectivity diagnostics: the server version, row
// counts for the three core tables, and up to three sample rows from
// each. Fields that were never reached stay nil so a partial report
// shows exactly how far the probe got. Metadata rows keep their dynamic
// column set because that table varies across dumps.
type Report struct {
	Dialect                string             `json:"dialect"`
	Version                string             `json:"version,omitempty"`
	CoordinatesCount       *int64             `json:"coordinates_count,omitempty"`
	MetadataCount          *int64             `json:"metadata_count,omitempty"`
	AnnotationsTermsCount  *int64             `json:"annotations_terms_count,omitempty"`
	CoordinatesSample      []CoordinateSample `json:"coordinates_sample"`
	MetadataSample         []map[string]any   `json:"metadata_sample"`
	AnnotationsTermsSample []AnnotationSample `json:"annotations_terms_sample"`
}

const (
	versionSQL = "SELECT version()"

	countCoordinatesSQL = "SELECT COUNT(*) FROM ns.coordinates"
	countMetadataSQL    = "SELECT COUNT(*) FROM ns.metadata"
	countAnnotationsSQL = "SELECT COUNT(*) FROM ns.annotations_terms"

	sampleCoordinatesSQL = "SELECT study_id, ST_X(geom) AS x, ST_Y(geom) AS y, ST_Z(geom) AS z FROM ns.coordinates LIMIT 3"
	sampleMetadataSQL    = "SELECT * FROM ns.metadata LIMIT 3"
	sampleAnnotationsSQL = "SELECT study_id, contrast_id, term, weight FROM ns.annotations_terms LIMIT 3"
)

// Diagnostics inspects the backing store. The version and count queries
// must succeed; a failure aborts the probe and returns both the partial
// Report and the error so callers can surface what was gathered up to
// that point. The sample queries are individually guarded in
// savepoints: one broken table degrades to an empty sample without
// poisoning the transaction for the remaining queries.
func (s *Store) Diagnostics(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{Dialect: Dialect}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, setSearchPath); err != nil {
			return fmt.Errorf("set search_path: %w", err)
		}
		if err := tx.QueryRow(ctx, versionSQL).Scan(&rep.Version); err != nil {
			return fmt.Errorf("server version: %w", err)
		}

		var coords int64
		if err := tx.QueryRow(ctx, countCoordinatesSQL).Scan(&coords); err != nil {
			return fmt.Errorf("count coordinates: %w", err)
		}
		rep.CoordinatesCount = &coords

		var meta int64
		if err := tx.QueryRow(ctx, countMetadataSQL).Scan(&meta); err != nil {
			return fmt.Errorf("count metadata: %w", err)
		}
		rep.MetadataCount = &meta

		var annot int64
		if err := tx.QueryRow(ctx, countAnnotationsSQL).Scan(&annot); err != nil {
			return fmt.Errorf("count annotations_terms: %w", err)
		}
		rep.AnnotationsTermsCount = &annot

		// a failing sample degrades to [] rather than failing the probe
		rep.CoordinatesSample = []CoordinateSample{}
		if sample, err := coordinateSamples(ctx, tx); err == nil {
			rep.CoordinatesSample = sample
		}
		rep.MetadataSample = []map[string]any{}
		if sample, err := metadataSamples(ctx, tx); err == nil {
			rep.MetadataSample = sample
		}
		rep.AnnotationsTermsSample = []AnnotationSample{}
		if sample, err := annotationSamples(ctx, tx); err == nil {
			rep.AnnotationsTermsSample = sample
		}
		return nil
	})

	s.observe(QueryDiagnostics, start, err)
	if err != nil {
		return rep, err
	}
	return rep, nil
}

// inSavepoint runs fn in a nested transaction and rolls it back on
// failure, keeping the outer transaction usable.
func inSavepoint(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	nested, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(nested); err != nil {
		_ = nested.Rollback(ctx)
		return err
	}
	return nested.Commit(ctx)
}

func coordinateSamples(ctx context.Context, tx pgx.Tx) ([]CoordinateSample, error) {
	out := []CoordinateSample{}
	err := inSavepoint(ctx, tx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sampleCoordinatesSQL)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var cs CoordinateSample
			if err := rows.Scan(&cs.StudyID, &cs.X, &cs.Y, &cs.Z); err != nil {
				return err
			}
			out = append(out, cs)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func metadataSamples(ctx context.Context, tx pgx.Tx) ([]map[string]any, error) {
	out := []map[string]any{}
	err := inSavepoint(ctx, tx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sampleMetadataSQL)
		if err != nil {
			return err
		}
		defer rows.Close()
		fields := rows.FieldDescriptions()
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return err
			}
			row := make(map[string]any, len(fields))
			for i := range fields {
				if i < len(values) {
					row[fields[i].Name] = values[i]
				}
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func annotationSamples(ctx context.Context, tx pgx.Tx) ([]AnnotationSample, error) {
	out := []AnnotationSample{}
	err := inSavepoint(ctx, tx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sampleAnnotationsSQL)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var as AnnotationSample
			if err := rows.Scan(&as.StudyID, &as.ContrastID, &as.Term, &as.Weight); err != nil {
				return err
			}
			out = append(out, as)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
