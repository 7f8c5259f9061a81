package database

import (
	"fmt"
	"log"

	config "github.com/kamau254/course_finance/configs"
	"github.com/kamau254/course_finance/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:              false,
		SkipDefaultTransaction:   true,
		DisableNestedTransaction: true,
		TranslateError:           true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Payment{},
		&models.RevenueAgreement{},
		&models.EarningRecord{},
		&models.PayoutRequest{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}

	// AutoMigrate cannot express partial indexes or triggers; these are the
	// storage-level guards the workflow invariants rely on under concurrent
	// retries.
	constraints := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_pending_payout_per_instructor
			ON payout_requests (instructor_id) WHERE status = 'pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_agreement_per_instructor
			ON revenue_agreements (instructor_id) WHERE status = 'approved' AND is_active`,
		`CREATE OR REPLACE FUNCTION audit_logs_append_only() RETURNS trigger AS $$
			BEGIN RAISE EXCEPTION 'audit_logs is append-only'; END;
			$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS trg_audit_logs_append_only ON audit_logs`,
		`CREATE TRIGGER trg_audit_logs_append_only
			BEFORE UPDATE OR DELETE ON audit_logs
			FOR EACH ROW EXECUTE FUNCTION audit_logs_append_only()`,
	}
	for _, stmt := range constraints {
		if err := DB.Exec(stmt).Error; err != nil {
			log.Fatalf("🔥 Failed to apply database constraint: %v", err)
		}
	}

	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
