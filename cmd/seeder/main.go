// Package main - разовые операции над снимком каталога: посев,
// пересоздание, откат к версии из истории и печать истории студента.
// Если настроен Redis, пересоздание и откат сбрасывают кэш снимка и
// кэш семестровых записей, чтобы портал не прочитал старые данные.
//
//	seeder                      # посеять, если снимка ещё нет
//	seeder -reset               # перезаписать снимок начальными данными
//	seeder -student STU-001     # напечатать историю студента в JSON
//	seeder -versions            # список сохранённых версий (PostgreSQL)
//	seeder -restore 42          # вернуть версию 42 (PostgreSQL)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/nextedu/portal/config"
	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/infrastructure/persistence/local"
	"github.com/nextedu/portal/internal/infrastructure/persistence/postgres"
	"github.com/nextedu/portal/internal/infrastructure/persistence/redis"
	"github.com/nextedu/portal/internal/infrastructure/security"
	"github.com/nextedu/portal/pkg/timeutil"
)

type options struct {
	reset    bool
	student  string
	versions bool
	restore  int64
	file     string
}

func main() {
	var opts options
	flag.BoolVar(&opts.reset, "reset", false, "overwrite the stored snapshot with fresh seed data")
	flag.StringVar(&opts.student, "student", "", "print the academic history of a student")
	flag.BoolVar(&opts.versions, "versions", false, "list saved snapshot versions")
	flag.Int64Var(&opts.restore, "restore", 0, "restore a saved snapshot version")
	flag.StringVar(&opts.file, "file", "", "snapshot file, overrides SNAPSHOT_FILE")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "seeder: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.file != "" {
		cfg.Database.URL = ""
		cfg.Database.SnapshotFile = opts.file
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	snapshots, versioned, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	var history *redis.HistoryCache
	if cache := openCache(ctx, cfg, log); cache != nil {
		defer cache.Close()
		sc := redis.NewSnapshotCache(snapshots, cache, postgres.DefaultSnapshotName, cfg.Redis.SnapshotTTL, log)
		snapshots = sc
		if versioned != nil {
			versioned = sc
		}
		history = redis.NewHistoryCache(cache, cfg.Redis.HistoryTTL)
	}

	switch {
	case opts.versions:
		if versioned == nil {
			return errors.New("snapshot history needs DATABASE_URL")
		}
		return printVersions(ctx, versioned)
	case opts.restore > 0:
		if versioned == nil {
			return errors.New("restore needs DATABASE_URL")
		}
		if err := versioned.Restore(ctx, opts.restore); err != nil {
			return fmt.Errorf("failed to restore version %d: %w", opts.restore, err)
		}
		log.Info("snapshot restored", "version", opts.restore)
		purgeHistory(ctx, history, log)
		return nil
	}

	synthOpts := []academic.Option{academic.WithBaseYear(cfg.Academic.BaseYear)}
	if cfg.Academic.Seed != 0 {
		synthOpts = append(synthOpts, academic.WithRandomSource(academic.NewRandomSource(cfg.Academic.Seed)))
	}
	hasher := security.NewBcryptHasher(cfg.Academic.BcryptCost)
	synth := academic.NewSynthesizer(synthOpts...)

	if opts.reset {
		snap, err := directory.Seed(directory.SeedConfig{Hasher: hasher, Synthesizer: synth, Now: timeutil.Now()})
		if err != nil {
			return err
		}
		if err := snapshots.Save(ctx, snap); err != nil {
			return fmt.Errorf("failed to save seed snapshot: %w", err)
		}
		log.Info("snapshot reset", "students", len(snap.Students), "teachers", len(snap.Teachers))
		purgeHistory(ctx, history, log)
	}

	store := directory.NewStore(directory.Config{
		Snapshots:   snapshots,
		Hasher:      hasher,
		Synthesizer: synth,
		Clock:       timeutil.Now,
	})
	seeded, err := store.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open directory: %w", err)
	}
	if seeded {
		log.Info("directory seeded")
	}

	if opts.student != "" {
		s, err := store.Student(opts.student)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s.History)
	}
	return printStudents(store.Students())
}

func openStore(ctx context.Context, cfg *config.Config) (directory.SnapshotStore, directory.VersionedSnapshotStore, func(), error) {
	switch {
	case cfg.Database.URL != "":
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.DefaultPoolOptions())
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, nil, err
		}
		repo := postgres.NewSnapshotRepository(conn)
		return repo, repo, conn.Close, nil
	case cfg.Database.SnapshotFile != "":
		return local.NewFileStore(cfg.Database.SnapshotFile), nil, func() {}, nil
	default:
		return nil, nil, nil, errors.New("set DATABASE_URL, SNAPSHOT_FILE or -file")
	}
}

// openCache подключается к Redis. Без Redis возвращает nil.
func openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) *redis.Cache {
	if cfg.Redis.Disabled {
		return nil
	}
	rc := redis.DefaultConfig()
	rc.URL = cfg.Redis.URL
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	rc.DialTimeout = cfg.Redis.DialTimeout
	cache, err := redis.NewCache(ctx, rc)
	if err != nil {
		log.Warn("redis unavailable, cached snapshot and records are left as is", "error", err)
		return nil
	}
	return cache
}

func purgeHistory(ctx context.Context, history *redis.HistoryCache, log *slog.Logger) {
	if history == nil {
		return
	}
	n, err := history.Purge(ctx)
	if err != nil {
		log.Warn("failed to purge cached semester records", "error", err)
		return
	}
	log.Info("cached semester records purged", "keys", n)
}

func printStudents(students []directory.Student) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSEM\tTEACHER\tATTENDANCE\tCGPA")
	for _, s := range students {
		_, summary := s.History.LatestSummary()
		cgpa := "-"
		if summary != nil {
			cgpa = summary.CGPA
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Semester, s.TeacherID, s.History.OverallAttendance(), cgpa)
	}
	return w.Flush()
}

func printVersions(ctx context.Context, store directory.VersionedSnapshotStore) error {
	list, err := store.History(ctx, 0)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSAVED\tSTUDENTS\tTEACHERS")
	for _, v := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", v.ID, timeutil.ToCampus(v.SavedAt).Format(timeutil.FormatDisplayDateTime), v.Students, v.Teachers)
	}
	return w.Flush()
}
