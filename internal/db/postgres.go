package db

import (
	"fmt"
	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/types"
	"github.com/dhg/hub-backend/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "dhg_hub", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
	}
	log.Info("uuid-ossp extension enabled")

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.FilterProfile{},
		&types.FilterProfileDrive{},
		&types.SourceGoogle{},
		&types.Expert{},
		&types.SourceExpert{},
		&types.ExpertDocument{},
		&types.Presentation{},
		&types.PresentationAsset{},
		&types.SubjectClassification{},
		&types.TableClassification{},
		&types.DocumentProcessingRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_user_token_user_id",
			sql: `ALTER TABLE "user_token"
            ADD CONSTRAINT "fk_user_token_user_id"
            FOREIGN KEY ("user_id") REFERENCES "user"("id")
            ON DELETE CASCADE`,
		},
		{
			name: "fk_filter_profile_drive_profile_id",
			sql: `ALTER TABLE "filter_profile_drive"
            ADD CONSTRAINT "fk_filter_profile_drive_profile_id"
            FOREIGN KEY ("profile_id") REFERENCES "filter_profile"("id")
            ON DELETE CASCADE`,
		},
		{
			name: "fk_presentation_asset_presentation_id",
			sql: `ALTER TABLE "presentation_asset"
            ADD CONSTRAINT "fk_presentation_asset_presentation_id"
            FOREIGN KEY ("presentation_id") REFERENCES "presentation"("id")
            ON DELETE CASCADE`,
		},
		{
			name: "fk_source_expert_source_id",
			sql: `ALTER TABLE "source_expert"
            ADD CONSTRAINT "fk_source_expert_source_id"
            FOREIGN KEY ("source_id") REFERENCES "sources_google"("id")
            ON DELETE CASCADE`,
		},
		{
			name: "fk_source_expert_expert_id",
			sql: `ALTER TABLE "source_expert"
            ADD CONSTRAINT "fk_source_expert_expert_id"
            FOREIGN KEY ("expert_id") REFERENCES "expert"("id")
            ON DELETE CASCADE`,
		},
		{
			name: "fk_table_classification_subject_id",
			sql: `ALTER TABLE "table_classification"
            ADD CONSTRAINT "fk_table_classification_subject_id"
            FOREIGN KEY ("subject_classification_id") REFERENCES "subject_classification"("id")
            ON DELETE CASCADE`,
		},
		{
			name: "fk_document_processing_run_document_id",
			sql: `ALTER TABLE "document_processing_run"
            ADD CONSTRAINT "fk_document_processing_run_document_id"
            FOREIGN KEY ("expert_document_id") REFERENCES "expert_document"("id")
            ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("Failed to check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
