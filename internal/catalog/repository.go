package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoProduct is returned by repositories when no product matches.
var ErrNoProduct = errors.New("product not found")

// ErrNoVariation is returned when the product or the variation within
// it does not exist.
var ErrNoVariation = errors.New("variation not found")

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, p Product) (Product, error)
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	// SetVariations atomically replaces attributes and variations and
	// returns the updated product.
	SetVariations(ctx context.Context, id string, attrs []Attribute, vars []Variation) (Product, error)
	// UpdateVariation atomically patches one variation of a product.
	UpdateVariation(ctx context.Context, productID, variationID string, upd VariationUpdate) error
}

// PostgresRepository implements Repository using PostgreSQL, storing
// attributes and variations as JSONB documents on the product row.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, title, description, brand, category_id, regular_price, sale_price, stock_quantity, active, attributes, variations, created_at`

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = uuid.NewString()
	attrs, vars, err := marshalDocs(p.Attributes, p.Variations)
	if err != nil {
		return Product{}, err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO products (`+productColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Title, p.Description, p.Brand, p.CategoryID,
		p.RegularPrice, p.SalePrice, p.StockQuantity, p.Active,
		attrs, vars, p.CreatedAt.UTC())
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, brand, category_id FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			id uuid.UUID
			s  Summary
		)
		if err := rows.Scan(&id, &s.Title, &s.Brand, &s.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product summary: %w", err)
		}
		s.ID = id.String()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return Product{}, ErrNoProduct
	}
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, upd Update) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ErrNoProduct
	}

	set := ""
	args := []any{productID}
	appendField := func(column string, value any) {
		if set != "" {
			set += ", "
		}
		args = append(args, value)
		set += fmt.Sprintf("%s = $%d", column, len(args))
	}
	if upd.Title != nil {
		appendField("title", *upd.Title)
	}
	if upd.Description != nil {
		appendField("description", *upd.Description)
	}
	if upd.Brand != nil {
		appendField("brand", *upd.Brand)
	}
	if upd.CategoryID != nil {
		appendField("category_id", *upd.CategoryID)
	}
	if upd.RegularPrice != nil {
		appendField("regular_price", *upd.RegularPrice)
	}
	if upd.SalePrice != nil {
		appendField("sale_price", *upd.SalePrice)
	}
	if upd.StockQuantity != nil {
		appendField("stock_quantity", *upd.StockQuantity)
	}
	if upd.Active != nil {
		appendField("active", *upd.Active)
	}
	if set == "" {
		return nil
	}

	cmd, err := r.db.Exec(ctx, `UPDATE products SET `+set+` WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoProduct
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return ErrNoProduct
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoProduct
	}
	return nil
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	productIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		productIDs = append(productIDs, parsed)
	}
	if len(productIDs) == 0 {
		return 0, nil
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *PostgresRepository) SetVariations(ctx context.Context, id string, attrs []Attribute, vars []Variation) (Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return Product{}, ErrNoProduct
	}
	attrsDoc, varsDoc, err := marshalDocs(attrs, vars)
	if err != nil {
		return Product{}, err
	}
	row := r.db.QueryRow(ctx, `UPDATE products SET attributes = $1, variations = $2
        WHERE id = $3 RETURNING `+productColumns, attrsDoc, varsDoc, productID)
	return scanProduct(row)
}

func (r *PostgresRepository) UpdateVariation(ctx context.Context, productID, variationID string, upd VariationUpdate) error {
	id, err := uuid.Parse(productID)
	if err != nil {
		return ErrNoVariation
	}

	patch := map[string]any{}
	if upd.RegularPrice != nil {
		patch["regularPrice"] = *upd.RegularPrice
	}
	if upd.SalePrice != nil {
		patch["salePrice"] = *upd.SalePrice
	}
	if upd.StockQuantity != nil {
		patch["stockQuantity"] = *upd.StockQuantity
	}
	if upd.Available != nil {
		patch["available"] = *upd.Available
	}
	if len(patch) == 0 {
		return nil
	}
	patchDoc, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal variation patch: %w", err)
	}

	// The containment guard makes a missing variation a zero-row update.
	cmd, err := r.db.Exec(ctx, `UPDATE products
        SET variations = (
            SELECT jsonb_agg(CASE WHEN elem->>'id' = $2 THEN elem || $3::jsonb ELSE elem END)
            FROM jsonb_array_elements(variations) AS elem)
        WHERE id = $1 AND variations @> jsonb_build_array(jsonb_build_object('id', $2::text))`,
		id, variationID, patchDoc)
	if err != nil {
		return fmt.Errorf("update variation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoVariation
	}
	return nil
}

func marshalDocs(attrs []Attribute, vars []Variation) ([]byte, []byte, error) {
	if attrs == nil {
		attrs = []Attribute{}
	}
	if vars == nil {
		vars = []Variation{}
	}
	attrsDoc, err := json.Marshal(attrs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal attributes: %w", err)
	}
	varsDoc, err := json.Marshal(vars)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal variations: %w", err)
	}
	return attrsDoc, varsDoc, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		id       uuid.UUID
		attrsDoc []byte
		varsDoc  []byte
		p        Product
	)
	err := row.Scan(&id, &p.Title, &p.Description, &p.Brand, &p.CategoryID,
		&p.RegularPrice, &p.SalePrice, &p.StockQuantity, &p.Active,
		&attrsDoc, &varsDoc, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNoProduct
	}
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.ID = id.String()
	p.CreatedAt = p.CreatedAt.UTC()
	if err := json.Unmarshal(attrsDoc, &p.Attributes); err != nil {
		return Product{}, fmt.Errorf("unmarshal attributes: %w", err)
	}
	if err := json.Unmarshal(varsDoc, &p.Variations); err != nil {
		return Product{}, fmt.Errorf("unmarshal variations: %w", err)
	}
	return p, nil
}
