package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"hotel_recommender/internal/adapters/csvsource"
	"hotel_recommender/internal/adapters/dataset"
	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/shared"
	"hotel_recommender/internal/storage/modelfile"
	mysqlrepo "hotel_recommender/internal/storage/mysql"
)

// Source kinds accepted by --source.
const (
	sourceCSV   = "csv"
	sourceURL   = "url"
	sourceMySQL = "mysql"
)

// repository is what the MySQL storage offers: the corpus table plus the
// model table.
type repository interface {
	domain.BookingRepository
	domain.ModelStore
}

// Factories are package variables so tests can swap in fakes.
var (
	openRepo  = openMySQLRepo
	openStore = openModelStore
)

func openMySQLRepo(ctx context.Context, c shared.Config) (repository, func(), error) {
	db, err := sql.Open("mysql", c.MySQLDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	return mysqlrepo.New(db), func() { _ = db.Close() }, nil
}

func openModelStore(ctx context.Context, c shared.Config) (domain.ModelStore, func(), error) {
	switch c.ModelStore {
	case shared.StoreMySQL:
		r, closeFn, err := openRepo(ctx, c)
		if err != nil {
			return nil, nil, err
		}
		return r, closeFn, nil
	default:
		return modelfile.New(c.ModelPath), func() {}, nil
	}
}

// openSource resolves --source/--csv/--url into a BookingSource.
func openSource(ctx context.Context, kind, csvPath, url string) (domain.BookingSource, func(), error) {
	switch kind {
	case "", sourceCSV:
		if csvPath == "" {
			csvPath = cfg.CSVPath
		}
		return csvsource.New(csvPath), func() {}, nil
	case sourceURL:
		if url == "" {
			url = cfg.DatasetURL
		}
		if url == "" {
			return nil, nil, errors.New("no dataset url: pass --url or set DATASET_URL")
		}
		return dataset.NewSource(dataset.New(cfg.DatasetRPS), url), func() {}, nil
	case sourceMySQL:
		r, closeFn, err := openRepo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return r, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown source %q (want csv, url or mysql)", domain.ErrInvalidParameter, kind)
	}
}
