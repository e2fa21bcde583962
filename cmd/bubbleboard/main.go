package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/jask/bubbleboard/internal/config"
	"github.com/jask/bubbleboard/internal/database"
	"github.com/jask/bubbleboard/internal/database/repository"
	"github.com/jask/bubbleboard/internal/gui"
	"github.com/jask/bubbleboard/internal/service"
	"github.com/jask/bubbleboard/internal/theme"
	"github.com/jask/bubbleboard/internal/tui"
)

func main() {
	root := &cobra.Command{
		Use:   "bubbleboard",
		Short: "A task board where every task is a floating bubble",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Run the board in the terminal",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert a handful of sample tasks",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context())
			},
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// env holds everything the frontends share.
type env struct {
	cfg   config.Config
	th    theme.Theme
	db    *sql.DB
	board repository.Board
	svc   *service.BoardService
	maint *service.MaintenanceService
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	th, err := theme.Load(cfg.UI.ThemePath)
	if err != nil {
		log.Printf("warn: using built-in theme: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, migrationsPath()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := database.SeedDefaults(ctx, db, cfg.UI.Board); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	svc := &service.BoardService{
		Boards:    repository.NewBoardRepo(db),
		Tasks:     repository.NewTaskRepo(db),
		Theme:     th,
		MinRadius: cfg.Physics.MinRadius,
		MaxRadius: cfg.Physics.MaxRadius,
	}
	board, err := svc.EnsureBoard(ctx, cfg.UI.Board)
	if err != nil {
		db.Close()
		return nil, err
	}

	maint := &service.MaintenanceService{DB: db, Tasks: svc.Tasks}
	if n, err := maint.PurgeDeleted(ctx); err == nil && n > 0 {
		log.Printf("purged %d old deleted tasks", n)
	}

	return &env{cfg: cfg, th: th, db: db, board: board, svc: svc, maint: maint}, nil
}

func runGUI(ctx context.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.db.Close()

	game := gui.New(ctx, e.cfg, e.th, e.board, e.svc, e.maint)
	ebiten.SetWindowTitle("bubbleboard - " + e.board.Name)
	ebiten.SetWindowSize(1024, 768)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}

func runTUI(ctx context.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.db.Close()

	app := tui.New(ctx, e.cfg, e.th, e.board, e.svc, e.maint)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func runSeed(ctx context.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.db.Close()

	samples := []struct {
		title  string
		weight int
	}{
		{"water the plants", 1},
		{"file the tax return", 5},
		{"call the dentist", 2},
		{"clean the gutters", 3},
		{"plan the weekend trip", 4},
	}
	green := color.New(color.FgGreen)
	for _, s := range samples {
		task, err := e.svc.Add(ctx, e.board.ID, s.title, s.weight)
		if err != nil {
			return err
		}
		green.Printf("+ %s", task.Title)
		fmt.Printf("  (weight %d)\n", task.Weight)
	}
	color.New(color.Bold).Printf("seeded %d tasks on %q\n", len(samples), e.board.Name)
	return nil
}

// migrationsPath resolves the migrations directory: the repo layout first,
// then next to the installed binary.
func migrationsPath() string {
	local := "internal/database/migrations"
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if exe, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), "migrations")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return local
}
