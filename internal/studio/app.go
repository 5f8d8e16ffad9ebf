package studio

import (
	"github.com/colonyops/quill/internal/core/config"
	"github.com/colonyops/quill/internal/data/db"
)

// App is the central entry point for all quill operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Posts     *Service
	Workspace *Workspace
	Config    *config.Config
	DB        *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(posts *Service, workspace *Workspace, cfg *config.Config, database *db.DB) *App {
	return &App{
		Posts:     posts,
		Workspace: workspace,
		Config:    cfg,
		DB:        database,
	}
}

// Close releases the database.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
