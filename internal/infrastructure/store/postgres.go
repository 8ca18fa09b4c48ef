package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Postgres implements the store interfaces over the products, site_info and
// user_carts tables (see schema.sql).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var (
	_ ProductStore  = (*Postgres)(nil)
	_ SiteInfoStore = (*Postgres)(nil)
	_ UserCartStore = (*Postgres)(nil)
)

const productColumns = `id, title, description, price, card_color, stock_quantity, image_url,
	images, colors, sizes, created_at, updated_at`

const siteInfoColumns = `id, slogan, whatsapp_number, carousel_images, materials_title,
	materials_description, design_title, design_description, service_title,
	service_description, faq_title, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (ProductRow, error) {
	var p ProductRow
	var images, colors, sizes []byte
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.CardColor, &p.StockQuantity,
		&p.ImageURL, &images, &colors, &sizes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return ProductRow{}, err
	}
	p.Images = json.RawMessage(images)
	p.Colors = json.RawMessage(colors)
	p.Sizes = json.RawMessage(sizes)
	return p, nil
}

func (s *Postgres) ListProducts(ctx context.Context) ([]ProductRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []ProductRow
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (*ProductRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func (s *Postgres) InsertProduct(ctx context.Context, p ProductRow) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, title, description, price, card_color, stock_quantity, image_url,
			images, colors, sizes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Title, p.Description, p.Price, p.CardColor, p.StockQuantity, p.ImageURL,
		jsonParam(p.Images), jsonParam(p.Colors), jsonParam(p.Sizes), p.CreatedAt, now,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateProduct(ctx context.Context, id string, fields Fields) error {
	if err := ApplyProductFields(&ProductRow{}, fields); err != nil {
		return err
	}
	return s.updateByID(ctx, "products", id, fields)
}

func (s *Postgres) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return expectAffected(res)
}

func scanSiteInfo(s rowScanner) (SiteInfoRow, error) {
	var r SiteInfoRow
	var carousel []byte
	err := s.Scan(&r.ID, &r.Slogan, &r.WhatsAppNumber, &carousel, &r.MaterialsTitle,
		&r.MaterialsDescription, &r.DesignTitle, &r.DesignDescription, &r.ServiceTitle,
		&r.ServiceDescription, &r.FAQTitle, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return SiteInfoRow{}, err
	}
	r.CarouselImages = json.RawMessage(carousel)
	return r, nil
}

func (s *Postgres) LatestSiteInfo(ctx context.Context) (*SiteInfoRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+siteInfoColumns+` FROM site_info ORDER BY created_at DESC LIMIT 1`)
	r, err := scanSiteInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get site info: %w", err)
	}
	return &r, nil
}

func (s *Postgres) InsertSiteInfo(ctx context.Context, r SiteInfoRow) (*SiteInfoRow, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO site_info (slogan, whatsapp_number, carousel_images, materials_title,
			materials_description, design_title, design_description, service_title,
			service_description, faq_title)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+siteInfoColumns,
		r.Slogan, r.WhatsAppNumber, jsonParam(r.CarouselImages), r.MaterialsTitle,
		r.MaterialsDescription, r.DesignTitle, r.DesignDescription, r.ServiceTitle,
		r.ServiceDescription, r.FAQTitle,
	)
	created, err := scanSiteInfo(row)
	if err != nil {
		return nil, fmt.Errorf("insert site info: %w", err)
	}
	return &created, nil
}

func (s *Postgres) UpdateSiteInfo(ctx context.Context, id string, fields Fields) error {
	if err := ApplySiteInfoFields(&SiteInfoRow{}, fields); err != nil {
		return err
	}
	return s.updateByID(ctx, "site_info", id, fields)
}

func (s *Postgres) GetUserCart(ctx context.Context, email string) (*UserCartRow, error) {
	var r UserCartRow
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT user_email, cart_data, created_at, updated_at FROM user_carts WHERE user_email = $1`,
		email,
	).Scan(&r.UserEmail, &data, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user cart: %w", err)
	}
	r.CartData = json.RawMessage(data)
	return &r, nil
}

func (s *Postgres) UpsertUserCart(ctx context.Context, email string, data json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_carts (user_email, cart_data) VALUES ($1, $2)
		 ON CONFLICT (user_email) DO UPDATE SET
			cart_data = EXCLUDED.cart_data,
			updated_at = now()`,
		email, jsonParam(data),
	)
	if err != nil {
		return fmt.Errorf("upsert user cart: %w", err)
	}
	return nil
}

// updateByID issues UPDATE table SET <only the given columns> WHERE id = $n.
// Column names have already been checked against the table's whitelist.
func (s *Postgres) updateByID(ctx context.Context, table, id string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	cols := fields.Columns()
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, sqlParam(fields[col]))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// jsonParam sends JSON as text; lib/pq would encode []byte as bytea.
func jsonParam(raw json.RawMessage) any {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func sqlParam(v any) any {
	if raw, ok := v.(json.RawMessage); ok {
		return jsonParam(raw)
	}
	return v
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
