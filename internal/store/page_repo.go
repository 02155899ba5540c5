package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = sql.ErrNoRows

// PageRepo persists OCR'd diary pages.
type PageRepo struct{ DB *sql.DB }

func NewPageRepo(db *sql.DB) *PageRepo { return &PageRepo{DB: db} }

// Page is one ingested OCR output file.
type Page struct {
	ID             string
	UserID         string
	DiaryID        string
	PageNumber     *int
	SourceFileName string
	RawText        string
	CleanText      string
	EntryDate      *time.Time
}

// MatchRow is one semantic-search hit.
type MatchRow struct {
	ID         string
	EntryDate  *time.Time
	PageNumber *int
	Text       string
	Similarity float64
}

func (r *PageRepo) Insert(ctx context.Context, p Page) error {
	const q = `
insert into diary_pages (
  user_id, diary_id, page_number, source_file_name,
  raw_text, clean_text, entry_date
) values ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.DB.ExecContext(ctx, q,
		p.UserID, p.DiaryID, p.PageNumber, p.SourceFileName,
		p.RawText, p.CleanText, p.EntryDate,
	)
	return err
}

// WithoutEmbeddings returns up to limit pages whose embedding is still null.
func (r *PageRepo) WithoutEmbeddings(ctx context.Context, limit int) ([]Page, error) {
	const q = `
select id, coalesce(raw_text,''), coalesce(clean_text,'')
from diary_pages
where embedding is null
limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.RawText, &p.CleanText); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PageRepo) UpdateEmbedding(ctx context.Context, id string, emb []float32) error {
	const q = `update diary_pages set embedding = $2::vector where id = $1`
	res, err := r.DB.ExecContext(ctx, q, id, VectorLiteral(emb))
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

// Match ranks embedded pages by cosine similarity to the query embedding.
func (r *PageRepo) Match(ctx context.Context, emb []float32, count int) ([]MatchRow, error) {
	const q = `
select id, entry_date, page_number,
       coalesce(nullif(clean_text,''), raw_text, '') as text,
       1 - (embedding <=> $1::vector) as similarity
from diary_pages
where embedding is not null
order by embedding <=> $1::vector
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, VectorLiteral(emb), count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var m MatchRow
		if err := rows.Scan(&m.ID, &m.EntryDate, &m.PageNumber, &m.Text, &m.Similarity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// VectorLiteral renders an embedding in pgvector's input syntax.
func VectorLiteral(emb []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range emb {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
