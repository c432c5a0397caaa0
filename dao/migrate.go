package dao

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
)

// Migrate applies the versioned schema migrations. New migrations are appended
// to the list; the initial migration owns the full schema so a fresh database
// comes up in one step.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202406010001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.Project{},
					&model.Sprint{},
					&model.Story{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"project_members", "stories", "sprints", "projects", "users",
				)
			},
		},
	})
	return m.Migrate()
}
