package main

import (
	"flag"
	"log"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"propcare/internal/config"
	"propcare/internal/database"
	"propcare/internal/database/schema"
	"propcare/internal/domain/cases"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/roster"
	"propcare/internal/logger"
)

const (
	demoOrg      = "00000000-0000-0000-0000-00000000a001"
	demoLandlord = "00000000-0000-0000-0000-00000000b001"
	demoPerson   = "00000000-0000-0000-0000-00000000c001"
)

func main() {
	cfgPath := flag.String("config", "", "optional configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.App.LogLevel, cfg.App.LogFormat, "propcare-seed")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.Database.URL, cfg.Database.MaxOpenConns, zl)
	if err != nil {
		zl.Fatal("db connection failed", zap.Error(err))
	}
	if err := schema.Migrate(db); err != nil {
		zl.Fatal("migrate failed", zap.Error(err))
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := clean(tx); err != nil {
			return err
		}
		return seed(tx, zl)
	}); err != nil {
		zl.Fatal("seed failed", zap.Error(err))
	}
	zl.Info("seed completed", zap.String("organization_id", demoOrg))
}

// clean removes the demo organization's rows so the seed can be rerun.
func clean(tx *gorm.DB) error {
	stmts := []struct {
		sql  string
		args []any
	}{
		{"DELETE FROM case_events WHERE organization_id = ?", []any{demoOrg}},
		{"DELETE FROM quote_line_items WHERE quote_id IN (SELECT id FROM quotes WHERE organization_id = ?)", []any{demoOrg}},
		{"DELETE FROM counter_proposals WHERE quote_id IN (SELECT id FROM quotes WHERE organization_id = ?)", []any{demoOrg}},
		{"DELETE FROM quotes WHERE organization_id = ?", []any{demoOrg}},
		{"DELETE FROM cases WHERE organization_id = ?", []any{demoOrg}},
		{"DELETE FROM favorite_contractors WHERE organization_id = ?", []any{demoOrg}},
		{"DELETE FROM contractor_links WHERE organization_id = ?", []any{demoOrg}},
		{"DELETE FROM contractor_specialties WHERE user_id = ?", []any{demoPerson}},
		{"DELETE FROM contractor_profiles WHERE user_id = ?", []any{demoPerson}},
		{"DELETE FROM vendors WHERE organization_id = ?", []any{demoOrg}},
		{"DELETE FROM approval_policies WHERE organization_id = ?", []any{demoOrg}},
	}
	for _, s := range stmts {
		if err := tx.Exec(s.sql, s.args...).Error; err != nil {
			return err
		}
	}
	return nil
}

func seed(tx *gorm.DB, zl *zap.Logger) error {
	plumber := roster.Vendor{OrganizationID: demoOrg, Name: "Rapid Plumbing Co", Category: "Plumbing", Rating: 4.8, ResponseTimeHours: 2, EmergencyAvailable: true, IsPreferred: true}
	electric := roster.Vendor{OrganizationID: demoOrg, Name: "Bright Spark Electrical", Category: "Electrical", Rating: 4.5, ResponseTimeHours: 6}
	handy := roster.Vendor{OrganizationID: demoOrg, Name: "Fix-It Handyman", Category: "General", Rating: 3.9, ResponseTimeHours: 24}
	for _, v := range []*roster.Vendor{&plumber, &electric, &handy} {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
	}

	profile := roster.ContractorProfile{UserID: demoPerson, DisplayName: "Cool Air HVAC", Category: "HVAC", Rating: 4.6, ResponseTimeHours: 4, EmergencyAvailable: true, IsAvailable: true}
	if err := tx.Create(&profile).Error; err != nil {
		return err
	}
	if err := tx.Create(&roster.ContractorLink{OrganizationID: demoOrg, ContractorUserID: demoPerson, Status: roster.LinkStatusActive}).Error; err != nil {
		return err
	}
	spec := roster.Specialty{Name: "Heating"}
	if err := tx.Where(roster.Specialty{Name: spec.Name}).FirstOrCreate(&spec).Error; err != nil {
		return err
	}
	if err := tx.Create(&roster.ContractorSpecialty{UserID: demoPerson, SpecialtyID: spec.ID}).Error; err != nil {
		return err
	}
	if err := tx.Create(&roster.FavoriteContractor{OrganizationID: demoOrg, ContractorID: electric.ID, CreatedBy: demoLandlord}).Error; err != nil {
		return err
	}

	p := policy.Policy{
		OrganizationID:         demoOrg,
		InvolvementMode:        policy.ModeHandsOff,
		TrustedContractorIDs:   datatypes.JSONSlice[string]{plumber.ID},
		AutoApproveCostLimit:   policy.DefaultAutoApproveCostLimit,
		AutoApproveEmergencies: true,
		IsActive:               true,
		CreatedBy:              demoLandlord,
	}
	if err := tx.Create(&p).Error; err != nil {
		return err
	}

	estimate := 300.0
	demo := []cases.Case{
		{OrganizationID: demoOrg, Title: "Leaking kitchen tap", Category: "Plumbing", Priority: cases.PriorityNormal, Status: cases.StatusNew, EstimatedCost: &estimate, ReportedBy: demoLandlord},
		{OrganizationID: demoOrg, Title: "No heating in flat 2", Category: "HVAC", Priority: cases.PriorityUrgent, IsUrgent: true, Status: cases.StatusNew, ReportedBy: demoLandlord},
		{
			OrganizationID: demoOrg, Title: "Flickering hallway lights", Category: "Electrical", Priority: cases.PriorityNormal, Status: cases.StatusNew, ReportedBy: demoLandlord,
			AITriage: datatypes.JSONMap{"cost_estimate": "$650 - $800"},
		},
	}
	if err := tx.Create(&demo).Error; err != nil {
		return err
	}

	zl.Info("seeded demo organization",
		zap.Int("vendors", 3),
		zap.Int("linked_contractors", 1),
		zap.Int("cases", len(demo)),
	)
	return nil
}
