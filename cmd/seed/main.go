package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kicklink/social-backend/internal/config"
	"github.com/kicklink/social-backend/internal/db"
)

type seedSneaker struct {
	Brand       string
	Model       string
	Colorway    string
	SKU         string
	RetailPrice int64
	ReleaseDate string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() (err error) {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}

	sneakers := buildSeedSneakers()

	canSeed, err := shouldSeed(ctx, sqlDB)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("sneakers already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE sneakers`); err != nil {
		return fmt.Errorf("truncate sneakers: %w", err)
	}

	for idx, s := range sneakers {
		if err := insertSneaker(ctx, tx, s, picsumURL(s.SKU, idx+1)); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Printf("seeded %d sneakers", len(sneakers))
	return nil
}

func buildSeedSneakers() []seedSneaker {
	return []seedSneaker{
		{Brand: "Nike", Model: "Air Jordan 1 Retro High OG", Colorway: "Chicago Lost & Found", SKU: "DZ5485-612", RetailPrice: 180, ReleaseDate: "2022-11-19"},
		{Brand: "Nike", Model: "Air Jordan 1 Retro High OG", Colorway: "Royal Reimagined", SKU: "DZ5485-042", RetailPrice: 180, ReleaseDate: "2023-11-04"},
		{Brand: "Nike", Model: "Dunk Low", Colorway: "Panda", SKU: "DD1391-100", RetailPrice: 110, ReleaseDate: "2021-03-10"},
		{Brand: "Nike", Model: "Air Force 1 '07", Colorway: "Triple White", SKU: "CW2288-111", RetailPrice: 110, ReleaseDate: "2020-08-01"},
		{Brand: "Nike", Model: "Air Max 1 '86 OG", Colorway: "Big Bubble", SKU: "DQ3989-100", RetailPrice: 150, ReleaseDate: "2023-03-26"},
		{Brand: "Jordan", Model: "Air Jordan 4 Retro", Colorway: "Thunder", SKU: "DH6927-017", RetailPrice: 215, ReleaseDate: "2023-05-13"},
		{Brand: "Jordan", Model: "Air Jordan 3 Retro", Colorway: "White Cement Reimagined", SKU: "DN3707-100", RetailPrice: 210, ReleaseDate: "2023-03-11"},
		{Brand: "Adidas", Model: "Samba OG", Colorway: "Cloud White Core Black", SKU: "B75806", RetailPrice: 100, ReleaseDate: "2018-01-01"},
		{Brand: "Adidas", Model: "Handball Spezial", Colorway: "Light Blue Gum", SKU: "BD7632", RetailPrice: 100, ReleaseDate: "2019-04-01"},
		{Brand: "Adidas", Model: "Campus 00s", Colorway: "Core Black", SKU: "HQ8708", RetailPrice: 110, ReleaseDate: "2022-09-15"},
		{Brand: "New Balance", Model: "550", Colorway: "White Green", SKU: "BB550WT1", RetailPrice: 120, ReleaseDate: "2021-02-12"},
		{Brand: "New Balance", Model: "990v6", Colorway: "Grey", SKU: "M990GL6", RetailPrice: 200, ReleaseDate: "2022-12-01"},
		{Brand: "New Balance", Model: "2002R", Colorway: "Protection Pack Rain Cloud", SKU: "M2002RDA", RetailPrice: 150, ReleaseDate: "2021-08-20"},
		{Brand: "Asics", Model: "Gel-Kayano 14", Colorway: "White Midnight", SKU: "1201A019-108", RetailPrice: 150, ReleaseDate: "2023-02-17"},
		{Brand: "Asics", Model: "Gel-1130", Colorway: "White Clay Canyon", SKU: "1201A256-113", RetailPrice: 100, ReleaseDate: "2022-06-03"},
		{Brand: "Salomon", Model: "XT-6", Colorway: "Black Phantom", SKU: "L41086600", RetailPrice: 190, ReleaseDate: "2020-09-01"},
		{Brand: "Vans", Model: "Old Skool", Colorway: "Black White", SKU: "VN000D3HY28", RetailPrice: 70, ReleaseDate: "2015-01-01"},
		{Brand: "Converse", Model: "Chuck 70 Hi", Colorway: "Parchment", SKU: "162053C", RetailPrice: 85, ReleaseDate: "2018-07-01"},
	}
}

func insertSneaker(ctx context.Context, tx *sql.Tx, s seedSneaker, imageURL string) error {
	release, err := time.Parse("2006-01-02", s.ReleaseDate)
	if err != nil {
		return fmt.Errorf("parse release date for %q: %w", s.SKU, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sneakers (brand, model, colorway, sku, retail_price, image_url, release_date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(s.Brand), strings.TrimSpace(s.Model), strings.TrimSpace(s.Colorway),
		strings.TrimSpace(s.SKU), s.RetailPrice, imageURL, release,
	)
	if err != nil {
		return fmt.Errorf("insert sneaker %q: %w", s.SKU, err)
	}
	return nil
}

func shouldSeed(ctx context.Context, db *sql.DB) (bool, error) {
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sneakers`).Scan(&cnt); err != nil {
		return false, fmt.Errorf("count sneakers: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	force := os.Getenv("FORCE_SEED")
	return strings.EqualFold(force, "true"), nil
}

func picsumURL(sku string, idx int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s-%d/600/600", strings.ToLower(sku), idx)
}