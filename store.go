package atelier

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eringen/atelier/records"
)

// Store groups the record repositories for every collection the site uses.
type Store struct {
	db *gorm.DB

	Projects           *records.Repository[Project]
	Posts              *records.Repository[BlogPost]
	Services           *records.Repository[Service]
	Testimonials       *records.Repository[Testimonial]
	PageSEO            *records.Repository[PageSEOSettings]
	HomepageImages     *records.Repository[HomepageImage]
	AboutImages        *records.Repository[AboutPageImage]
	SectionBackgrounds *records.Repository[SectionBackground]
}

// models lists every record type, in migration order.
var models = []any{
	&Project{},
	&BlogPost{},
	&Service{},
	&Testimonial{},
	&PageSEOSettings{},
	&HomepageImage{},
	&AboutPageImage{},
	&SectionBackground{},
}

// NewStore migrates the schema on db and builds the repositories.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{
		db:                 db,
		Projects:           records.MustNew[Project](db),
		Posts:              records.MustNew[BlogPost](db),
		Services:           records.MustNew[Service](db),
		Testimonials:       records.MustNew[Testimonial](db),
		PageSEO:            records.MustNew[PageSEOSettings](db),
		HomepageImages:     records.MustNew[HomepageImage](db),
		AboutImages:        records.MustNew[AboutPageImage](db),
		SectionBackgrounds: records.MustNew[SectionBackground](db),
	}, nil
}

// OpenStore opens the database named by cfg: Postgres when DatabaseURL is
// set, SQLite at DatabasePath otherwise.
func OpenStore(cfg SiteConfig) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(db)
	if err != nil {
		records.Close(db)
		return nil, err
	}
	return s, nil
}

func openDB(cfg SiteConfig) (*gorm.DB, error) {
	gcfg := records.Config(cfg.DatabaseLog)
	if cfg.DatabaseURL != "" {
		return records.OpenPostgres(cfg.DatabaseURL, gcfg)
	}
	return records.OpenSQLite(cfg.DatabasePath, gcfg)
}

// DB returns the underlying database handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return records.Close(s.db)
}

// Stats counts projects and posts for the admin dashboard.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&st.Projects, func() (int64, error) { return s.Projects.Count(ctx) }},
		{&st.PublishedProjects, func() (int64, error) { return s.Projects.Count(ctx, records.Eq("published", true)) }},
		{&st.LockedProjects, func() (int64, error) { return s.Projects.Count(ctx, records.Eq("is_locked", true)) }},
		{&st.BlogPosts, func() (int64, error) { return s.Posts.Count(ctx) }},
		{&st.PublishedPosts, func() (int64, error) { return s.Posts.Count(ctx, records.Eq("published", true)) }},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return Stats{}, err
		}
		*c.dst = n
	}
	return st, nil
}
