// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"librekeep/configs"
	"librekeep/internal/audit"
	"librekeep/internal/catalog"
	"librekeep/internal/circulation"
	"librekeep/internal/identity"
	"librekeep/internal/membership"
	"librekeep/internal/middleware"
	"librekeep/internal/store"
	"librekeep/internal/telemetry"
)

func main() {
	cfg := configs.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, "librekeep-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Failed to disconnect from MongoDB: %v", err)
		}
	}()
	db := client.Database(cfg.DBName)

	st := store.NewMongo(db)
	audits := audit.NewLogger(store.AuditCollection(db))
	tokens := identity.NewTokenIssuer(cfg.JWTSecret)

	identitySvc := identity.NewService(st.Librarians, identity.AdminConfig{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}, tokens)
	catalogSvc := catalog.NewService(st, audits)
	circulationSvc := circulation.NewService(st, audits, circulation.Options{
		LoanPeriodDays: cfg.LoanPeriodDays,
		MaxLoans:       cfg.MaxLoansPerMember,
	})
	membershipSvc := membership.NewService(st, tokens, audits)

	router := newRouter(handlers{
		identity:    identity.NewHandler(identitySvc),
		catalog:     catalog.NewHandler(catalogSvc),
		circulation: circulation.NewHandler(circulationSvc),
		membership:  membership.NewHandler(membershipSvc),
	}, tokens)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Printf("Telemetry shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

type handlers struct {
	identity    *identity.Handler
	catalog     *catalog.Handler
	circulation *circulation.Handler
	membership  *membership.Handler
}

func newRouter(h handlers, tokens *identity.TokenIssuer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	authed := middleware.Authenticate(tokens)
	admin := middleware.RequireAdmin()
	staff := middleware.RequireStaff()
	member := middleware.RequireMember()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.identity.Login)
			r.Group(func(r chi.Router) {
				r.Use(authed)
				r.Get("/verify", h.identity.Verify)
				r.Put("/change-password", h.identity.ChangePassword)
				r.Group(func(r chi.Router) {
					r.Use(admin)
					r.Post("/librarians", h.identity.CreateLibrarian)
					r.Get("/librarians", h.identity.ListLibrarians)
					r.Get("/librarians/{id}", h.identity.GetLibrarian)
					r.Put("/librarians/{id}", h.identity.UpdateLibrarian)
					r.Delete("/librarians/{id}", h.identity.DeleteLibrarian)
				})
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Post("/register", h.membership.Register)
			r.Post("/login", h.membership.Login)

			r.Group(func(r chi.Router) {
				r.Use(authed)
				// Catalog browsing is open to any authenticated account.
				r.Get("/search-books", h.catalog.SearchBooks)
				r.Get("/books/{id}", h.catalog.GetBook)

				r.Group(func(r chi.Router) {
					r.Use(member)
					r.Get("/profile", h.membership.Profile)
					r.Put("/profile", h.membership.UpdateProfile)
					r.Put("/change-password", h.membership.ChangePassword)
					r.Post("/borrow/{bookId}", h.circulation.Borrow)
					r.Post("/return/{bookId}", h.circulation.Return)
					r.Get("/my-books", h.circulation.MyBooks)
					r.Get("/history", h.circulation.History)
				})

				r.Group(func(r chi.Router) {
					r.Use(staff)
					r.Get("/", h.membership.ListMembers)
					r.Get("/{id}", h.membership.GetMember)
					r.Put("/{id}", h.membership.UpdateMember)
				})
				r.With(admin).Delete("/{id}", h.membership.DeleteMember)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authed, staff)

			r.Route("/books", func(r chi.Router) {
				r.Post("/", h.catalog.AddBook)
				r.Get("/", h.catalog.ListBooks)
				r.Get("/search", h.catalog.SearchBooks)
				r.Get("/overdue", h.circulation.Overdue)
				r.Post("/checkout", h.circulation.CheckOut)
				r.Put("/checkin", h.circulation.CheckIn)
				r.Get("/{id}", h.catalog.GetBook)
				r.Put("/{id}", h.catalog.UpdateBook)
				r.Delete("/{id}", h.catalog.DeleteBook)
			})

			r.Route("/authors", func(r chi.Router) {
				r.Post("/", h.catalog.CreateAuthor)
				r.Get("/", h.catalog.ListAuthors)
				r.Get("/search", h.catalog.SearchAuthors)
				r.Get("/{id}", h.catalog.GetAuthor)
				r.Put("/{id}", h.catalog.UpdateAuthor)
				r.Delete("/{id}", h.catalog.DeleteAuthor)
			})

			r.Route("/borrowers", func(r chi.Router) {
				r.Post("/", h.catalog.AddBorrower)
				r.Get("/", h.catalog.ListBorrowers)
				r.Get("/{id}", h.catalog.GetBorrower)
				r.Put("/{id}", h.catalog.UpdateBorrower)
				r.Delete("/{id}", h.catalog.DeleteBorrower)
			})

			r.Get("/counts", h.catalog.Counts)
		})
	})

	return r
}
