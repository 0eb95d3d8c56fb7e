// Package app wires configuration, storage, services and the HTTP stack
// together and manages the server lifecycle.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/shopcore/storefront/internal/auth"
	"github.com/shopcore/storefront/internal/config"
	"github.com/shopcore/storefront/internal/httpapi"
	"github.com/shopcore/storefront/internal/middleware"
	"github.com/shopcore/storefront/internal/services/orders"
	"github.com/shopcore/storefront/internal/services/products"
	"github.com/shopcore/storefront/internal/services/users"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/memory"
	"github.com/shopcore/storefront/internal/storage/sqlstore"
	"github.com/shopcore/storefront/internal/storage/table"
	"github.com/shopcore/storefront/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation, which keeps local runs and tests database-free.
type Stores struct {
	Users    storage.UserStore
	Products storage.ProductStore
	Orders   storage.OrderStore
}

// Application ties the services together and manages the HTTP server.
type Application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sql.DB
	server   *http.Server
	stop     chan struct{}
	stopOnce sync.Once

	Users    *users.Service
	Products *products.Service
	Orders   *orders.Service
}

// New builds a fully initialised application. When stores are nil and the
// database is reachable, postgres-backed stores are wired through the table
// accessor.
func New(cfg *config.Config, stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	}

	var db *sql.DB
	if stores.Users == nil || stores.Products == nil || stores.Orders == nil {
		opened, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened

		tables := table.New(db)
		if stores.Users == nil {
			stores.Users = sqlstore.NewUserStore(tables)
		}
		if stores.Products == nil {
			stores.Products = sqlstore.NewProductStore(tables)
		}
		if stores.Orders == nil {
			stores.Orders = sqlstore.NewOrderStore(tables)
		}
	}

	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	userSvc := users.New(stores.Users, tokens, log)
	productSvc := products.New(stores.Products, log)
	orderSvc := orders.New(stores.Orders, stores.Products, log)

	stop := make(chan struct{})

	router := mux.NewRouter()
	router.Use(middleware.NewCORS(cfg.CORS.AllowedOrigins).Handler)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.NewUserResolver(tokens, stores.Users, log).Handler)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		limiter.StartCleanup(5*time.Minute, 10*time.Minute, stop)
		router.Use(limiter.Handler)
	}

	httpapi.New(userSvc, productSvc, orderSvc, log).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		cfg:      cfg,
		log:      log,
		db:       db,
		server:   server,
		stop:     stop,
		Users:    userSvc,
		Products: productSvc,
		Orders:   orderSvc,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("HTTP server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains in-flight requests, stops background sweeps and closes the
// database.
func (a *Application) Shutdown(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stop) })

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

// MemoryStores returns a full set of in-memory stores for tests and local
// runs without postgres.
func MemoryStores() Stores {
	return Stores{
		Users:    memory.NewUsers(),
		Products: memory.NewProducts(),
		Orders:   memory.NewOrders(),
	}
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
