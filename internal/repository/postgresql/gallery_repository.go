package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"animator-service/internal/entity"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// GalleryRepository reads generation status straight from the gallery table
// the remote service writes its results into.
type GalleryRepository struct {
	pool *pgxpool.Pool
}

func NewGalleryRepository(pool *pgxpool.Pool) *GalleryRepository {
	return &GalleryRepository{pool: pool}
}

const selectStatus = `
SELECT id::text, public_url, status::text, metadata
FROM gallery
`

// StatusByIDs returns the current status of every known id. Unknown ids are
// simply absent from the result.
func (r *GalleryRepository) StatusByIDs(ctx context.Context, ids []string) ([]entity.StatusUpdate, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, selectStatus+`WHERE id::text = ANY($1);`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.StatusUpdate
	for rows.Next() {
		upd, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, upd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanStatus(row pgx.Row) (entity.StatusUpdate, error) {
	var (
		id            string
		publicURL     *string // NULL => nil
		status        *string
		metadataBytes []byte
	)
	if err := row.Scan(&id, &publicURL, &status, &metadataBytes); err != nil {
		return entity.StatusUpdate{}, err
	}
	return toStatusUpdate(id, publicURL, status, metadataBytes), nil
}

func toStatusUpdate(id string, publicURL, status *string, metadata []byte) entity.StatusUpdate {
	upd := entity.StatusUpdate{JobID: id}
	if publicURL != nil {
		upd.OutputURL = *publicURL
	}
	if status != nil {
		upd.Status = *status
	}

	if len(metadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(metadata, &meta); err == nil {
			if v, ok := meta["error"]; ok && v != nil {
				upd.ErrorDetail = fmt.Sprint(v)
			}
		}
	}
	return upd
}
